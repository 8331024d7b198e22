package enrichment_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benmeehan/apmapper/internal/enrichment"
	"github.com/benmeehan/apmapper/internal/mocks"
	"github.com/benmeehan/apmapper/internal/models"
	"github.com/benmeehan/apmapper/internal/utils"
	"github.com/benmeehan/apmapper/pkg/file"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	pmkidLine = "WPA*01*4d4fe7aac3a2cecab195321ceb99a7d0*001122334455*aabbccddeeff*686f6d65***"
	eapolWPA3 = "WPA*02*024022795224bffca545276c3762686f*0a0b0c0d0e0f*aabbccddeeff*6c6162*6cdf8b6e*0103007502010a0000000000000000000130100000fac040100000fac040100000fac080000*02"
	eapolWPA2 = "WPA*02*024022795224bffca545276c3762686f*0a0b0c0d0e0f*aabbccddeeff*6c6162*6cdf8b6e*0103007502010a0000000000000000000130100000fac040100000fac040100000fac020000*02"
	eapolWPA  = "WPA*02*024022795224bffca545276c3762686f*0a0b0c0d0e0f*aabbccddeeff*6c6162*6cdf8b6e*01030075fe01090020dd160050f20101000050f20201000050f20201000050f202*02"
	eapolNone = "WPA*02*024022795224bffca545276c3762686f*0a0b0c0d0e0f*aabbccddeeff*6c6162*6cdf8b6e*0103005f02030a*02"
)

func TestParseHashLine(t *testing.T) {
	cases := []struct {
		name     string
		line     string
		mac      string
		security models.SecurityKind
		ok       bool
	}{
		{"pmkid assumes wpa2", pmkidLine, "00:11:22:33:44:55", models.SecurityWPA2, true},
		{"eapol sae", eapolWPA3, "0a:0b:0c:0d:0e:0f", models.SecurityWPA3, true},
		{"eapol psk", eapolWPA2, "0a:0b:0c:0d:0e:0f", models.SecurityWPA2, true},
		{"eapol legacy wpa", eapolWPA, "0a:0b:0c:0d:0e:0f", models.SecurityWPA, true},
		{"eapol unknown suite", eapolNone, "0a:0b:0c:0d:0e:0f", models.SecurityWPA2, true},
		{"not a hash line", "hello", "", "", false},
		{"wrong prefix", "WPB*01*aa*001122334455*aabbccddeeff", "", "", false},
		{"short mac", "WPA*01*aa*0011223344*aabbccddeeff", "", "", false},
		{"bad hex", "WPA*01*aa*00112233445z*aabbccddeeff", "", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mac, security, ok := enrichment.ParseHashLine(tc.line)
			assert.Equal(t, tc.ok, ok)
			if !tc.ok {
				return
			}
			assert.Equal(t, tc.mac, mac.String())
			assert.Equal(t, tc.security, security)
		})
	}
}

func TestParseShowLine(t *testing.T) {
	c, ok := enrichment.ParseShowLine("4d4fe7aac3a2cecab195321ceb99a7d0:001122334455:aabbccddeeff:home:hunter2")
	require.True(t, ok)
	assert.Equal(t, "00:11:22:33:44:55", c.MAC.String())
	assert.Equal(t, "home", c.SSID)
	assert.Equal(t, "hunter2", c.Password)

	c, ok = enrichment.ParseShowLine("mic:001122334455:aabbccddeeff:home:pa:ss:word")
	require.True(t, ok)
	assert.Equal(t, "pa:ss:word", c.Password)

	_, ok = enrichment.ParseShowLine("mic:0011:aabbccddeeff:home:pw")
	assert.False(t, ok)
	_, ok = enrichment.ParseShowLine("mic:001122334455:aabbccddeeff")
	assert.False(t, ok)
}

func TestBindPasswords(t *testing.T) {
	mac := models.MAC{0, 1, 2, 3, 4, 5}
	other := models.MAC{9, 9, 9, 9, 9, 9}
	credentials := []enrichment.Credential{
		{MAC: mac, SSID: "home", Password: "secret", Security: models.SecurityWPA2},
	}

	t.Run("unset ssid takes credential", func(t *testing.T) {
		ap := &models.AccessPoint{MAC: mac}
		n := enrichment.BindPasswords([]*models.AccessPoint{ap}, credentials, zerolog.Nop())
		assert.Equal(t, 1, n)
		assert.Equal(t, "home", *ap.SSID)
		assert.Equal(t, "secret", *ap.Password)
		assert.Equal(t, models.SecurityWPA2, *ap.Security)
	})

	t.Run("matching ssid keeps observed security", func(t *testing.T) {
		ap := &models.AccessPoint{MAC: mac, SSID: utils.Ptr("home"), Security: utils.Ptr(models.SecurityWPA2WPA3)}
		enrichment.BindPasswords([]*models.AccessPoint{ap}, credentials, zerolog.Nop())
		assert.Equal(t, "secret", *ap.Password)
		assert.Equal(t, models.SecurityWPA2WPA3, *ap.Security)
	})

	t.Run("different ssid is dropped", func(t *testing.T) {
		ap := &models.AccessPoint{MAC: mac, SSID: utils.Ptr("office")}
		n := enrichment.BindPasswords([]*models.AccessPoint{ap}, credentials, zerolog.Nop())
		assert.Equal(t, 0, n)
		assert.Nil(t, ap.Password)
		assert.Nil(t, ap.Security)
		assert.Equal(t, "office", *ap.SSID)
	})

	t.Run("other mac untouched", func(t *testing.T) {
		ap := &models.AccessPoint{MAC: other}
		enrichment.BindPasswords([]*models.AccessPoint{ap}, credentials, zerolog.Nop())
		assert.Nil(t, ap.Password)
		assert.Nil(t, ap.SSID)
	})
}

func writeHashDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestHashcatEnricher_Enrich(t *testing.T) {
	dir := writeHashDir(t, map[string]string{
		"a.22000": pmkidLine + "\n",
		"b.22000": eapolWPA3 + "\n",
	})
	runner := new(mocks.MockCommandRunner)
	runner.On("LookPath", "hashcat").Return("/usr/bin/hashcat", nil)
	runner.On("Output", mock.Anything, "/usr/bin/hashcat", []string{"--show", "-m", "22000", filepath.Join(dir, "a.22000")}).
		Return([]byte("mic:001122334455:aabbccddeeff:home:secret\n"), []byte(nil), nil)
	runner.On("Output", mock.Anything, "/usr/bin/hashcat", []string{"--show", "-m", "22000", filepath.Join(dir, "b.22000")}).
		Return([]byte("mic:001122334455:aabbccddeeff:home:secret\nmic:0a0b0c0d0e0f:aabbccddeeff:lab:labpass\r\n"), []byte(nil), nil)

	aps := []*models.AccessPoint{
		{MAC: models.MAC{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}},
		{MAC: models.MAC{0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f}, SSID: utils.Ptr("lab")},
		{MAC: models.MAC{0x02, 0, 0, 0, 0, 1}},
	}

	enricher := enrichment.NewHashcatEnricher(file.NewFileService(), runner, time.Second, zerolog.Nop())
	n := enricher.Enrich(context.Background(), dir, aps)

	assert.Equal(t, 2, n)
	assert.Equal(t, "home", *aps[0].SSID)
	assert.Equal(t, "secret", *aps[0].Password)
	assert.Equal(t, models.SecurityWPA2, *aps[0].Security)
	assert.Equal(t, "labpass", *aps[1].Password)
	assert.Equal(t, models.SecurityWPA3, *aps[1].Security)
	assert.Nil(t, aps[2].Password)
	runner.AssertExpectations(t)
}

func TestHashcatEnricher_Credentials_DeduplicatesLines(t *testing.T) {
	dir := writeHashDir(t, map[string]string{"a.22000": pmkidLine + "\n", "b.22000": ""})
	runner := new(mocks.MockCommandRunner)
	runner.On("LookPath", "hashcat").Return("hashcat", nil)
	runner.On("Output", mock.Anything, "hashcat", mock.Anything).
		Return([]byte("mic:001122334455:aabbccddeeff:home:secret\n"), []byte(nil), nil)

	enricher := enrichment.NewHashcatEnricher(file.NewFileService(), runner, 0, zerolog.Nop())
	credentials := enricher.Credentials(context.Background(), dir)

	require.Len(t, credentials, 1)
	assert.Equal(t, models.SecurityWPA2, credentials[0].Security)
	runner.AssertNumberOfCalls(t, "Output", 2)
}

func TestHashcatEnricher_Degrades(t *testing.T) {
	t.Run("binary missing", func(t *testing.T) {
		runner := new(mocks.MockCommandRunner)
		runner.On("LookPath", "hashcat").Return("", errors.New("not found"))
		fileOps := new(mocks.MockFileOperations)

		enricher := enrichment.NewHashcatEnricher(fileOps, runner, time.Second, zerolog.Nop())
		assert.Empty(t, enricher.Credentials(context.Background(), "dumps"))
		fileOps.AssertNotCalled(t, "ListFiles", mock.Anything, mock.Anything)
	})

	t.Run("no hash files", func(t *testing.T) {
		runner := new(mocks.MockCommandRunner)
		runner.On("LookPath", "hashcat").Return("hashcat", nil)
		fileOps := new(mocks.MockFileOperations)
		fileOps.On("ListFiles", "dumps", "22000").Return([]string{}, nil)

		enricher := enrichment.NewHashcatEnricher(fileOps, runner, time.Second, zerolog.Nop())
		assert.Empty(t, enricher.Credentials(context.Background(), "dumps"))
		runner.AssertNotCalled(t, "Output", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("command fails", func(t *testing.T) {
		dir := writeHashDir(t, map[string]string{"a.22000": pmkidLine})
		runner := new(mocks.MockCommandRunner)
		runner.On("LookPath", "hashcat").Return("hashcat", nil)
		runner.On("Output", mock.Anything, "hashcat", mock.Anything).
			Return([]byte(nil), []byte("potfile locked"), errors.New("exit status 255"))

		enricher := enrichment.NewHashcatEnricher(file.NewFileService(), runner, time.Second, zerolog.Nop())
		assert.Empty(t, enricher.Credentials(context.Background(), dir))
	})
}

func TestParseHashFile(t *testing.T) {
	securities := make(map[models.MAC]models.SecurityKind)
	input := strings.Join([]string{pmkidLine, "garbage", eapolWPA2, eapolWPA3}, "\n")
	require.NoError(t, enrichment.ParseHashFile(strings.NewReader(input), securities))

	assert.Len(t, securities, 2)
	assert.Equal(t, models.SecurityWPA3, securities[models.MAC{0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f}], "later line wins")
}
