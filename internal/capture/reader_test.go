package capture

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benmeehan/apmapper/pkg/file"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dataFrame is a radiotap (channel 6, given signal) + from-DS data frame sent by mac.
func dataFrame(mac byte, signal int8) []byte {
	rt := make([]byte, 13)
	binary.LittleEndian.PutUint16(rt[2:4], 13)
	binary.LittleEndian.PutUint32(rt[4:8], 1<<3|1<<5)
	binary.LittleEndian.PutUint16(rt[8:10], 2437)
	rt[12] = byte(signal)

	frame := make([]byte, 24)
	frame[0], frame[1] = 0x08, 0x02
	copy(frame[10:16], []byte{0x02, 0, 0, 0, 0, mac})
	return append(rt, frame...)
}

func writeCapture(t *testing.T, path string, start time.Time, records ...[]byte) {
	t.Helper()
	var buf bytes.Buffer
	w, err := pcapgo.NewNgWriter(&buf, layers.LinkTypeIEEE80211Radio)
	require.NoError(t, err)
	for i, data := range records {
		ci := gopacket.CaptureInfo{
			Timestamp:     start.Add(time.Duration(i) * time.Second),
			CaptureLength: len(data),
			Length:        len(data),
		}
		require.NoError(t, w.WritePacket(ci, data))
	}
	require.NoError(t, w.Flush())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestReadDirectory_OrderAndStats(t *testing.T) {
	dir := t.TempDir()
	start := time.Unix(1710504000, 0)

	writeCapture(t, filepath.Join(dir, "b.pcapng"), start.Add(time.Hour), dataFrame(3, -70))
	writeCapture(t, filepath.Join(dir, "a.pcapng"), start, dataFrame(1, -50), []byte{0x00}, dataFrame(2, -60))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	reader := NewReader(file.NewFileService(), 4, zerolog.Nop())
	result, err := reader.ReadDirectory(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, Stats{Files: 2, Records: 4, Decoded: 3, Malformed: 1}, result.Stats)
	require.Len(t, result.Packets, 3)
	for i, want := range []byte{1, 2, 3} {
		require.NotNil(t, result.Packets[i].SourceAddress)
		assert.Equal(t, want, (*result.Packets[i].SourceAddress)[5], "packet %d", i)
	}
	assert.Equal(t, start.Unix(), result.Packets[0].Timestamp.Unix())
	assert.Equal(t, int8(-60), *result.Packets[1].SignalStrength)
	assert.Equal(t, uint8(6), *result.Packets[2].Channel)
}

func TestReadDirectory_CorruptFileIsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeCapture(t, filepath.Join(dir, "good.pcapng"), time.Unix(0, 0), dataFrame(1, -50))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.pcapng"), []byte("not a capture"), 0o644))

	reader := NewReader(file.NewFileService(), 1, zerolog.Nop())
	result, err := reader.ReadDirectory(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.Files)
	assert.Equal(t, 1, result.Stats.FailedFiles)
	assert.Len(t, result.Packets, 1)
}

func TestReadFile_TruncatedTailKeepsPartialResults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cut.pcapng")
	writeCapture(t, path, time.Unix(0, 0), dataFrame(1, -50), dataFrame(2, -55))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw[:len(raw)-10], 0o644))

	reader := NewReader(file.NewFileService(), 1, zerolog.Nop())
	result := reader.ReadFile(context.Background(), path)
	require.NoError(t, result.Err)
	assert.Equal(t, 1, result.Records)
	assert.Len(t, result.Packets, 1)
}

func TestReadDirectory_MissingDirectory(t *testing.T) {
	reader := NewReader(file.NewFileService(), 1, zerolog.Nop())
	_, err := reader.ReadDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestReadDirectory_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeCapture(t, filepath.Join(dir, "a.pcapng"), time.Unix(0, 0), dataFrame(1, -50))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := NewReader(file.NewFileService(), 1, zerolog.Nop())
	_, err := reader.ReadDirectory(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}
