package enrichment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/benmeehan/apmapper/internal/constants"
	"github.com/benmeehan/apmapper/internal/models"
	"github.com/benmeehan/apmapper/internal/utils"
	"github.com/benmeehan/apmapper/pkg/file"
	"github.com/rs/zerolog"
)

// HashcatEnricher binds passwords already cracked by hashcat to access points.
type HashcatEnricher struct {
	fileOps file.FileOperations
	runner  CommandRunner
	timeout time.Duration
	logger  zerolog.Logger
}

// NewHashcatEnricher creates a HashcatEnricher. timeout bounds each hashcat invocation.
func NewHashcatEnricher(fileOps file.FileOperations, runner CommandRunner, timeout time.Duration, logger zerolog.Logger) *HashcatEnricher {
	if timeout <= 0 {
		timeout = constants.DefaultHashcatTimeout
	}
	return &HashcatEnricher{
		fileOps: fileOps,
		runner:  runner,
		timeout: timeout,
		logger:  logger,
	}
}

// Enrich looks up the potfile entries of every *.22000 file in dir and binds them to aps.
// A missing hashcat binary, an unreadable directory or a failing invocation only degrade
// the result. It returns how many access points carry a password afterwards.
func (h *HashcatEnricher) Enrich(ctx context.Context, dir string, aps []*models.AccessPoint) int {
	credentials := h.Credentials(ctx, dir)
	return BindPasswords(aps, credentials, h.logger)
}

// Credentials collects the cracked networks hashcat knows for the hash files of dir.
func (h *HashcatEnricher) Credentials(ctx context.Context, dir string) []Credential {
	binary, err := h.runner.LookPath(constants.HashcatBinary)
	if err != nil {
		h.logger.Warn().Msg("Hashcat binary not found in PATH, skipping password retrieval")
		return nil
	}

	files, err := h.fileOps.ListFiles(dir, constants.HashFileExtension)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list hash files")
		return nil
	}
	if len(files) == 0 {
		h.logger.Warn().Str("directory", dir).Msg("No .22000 files found")
		return nil
	}

	securities := h.securities(files)

	var credentials []Credential
	seen := make(map[string]struct{})
	for _, path := range files {
		lines, err := h.show(ctx, binary, path)
		if err != nil {
			h.logger.Error().Err(err).Str("file", path).Msg("Hashcat command failed")
			continue
		}

		for _, line := range lines {
			if _, dup := seen[line]; dup {
				continue
			}
			seen[line] = struct{}{}

			credential, ok := ParseShowLine(line)
			if !ok {
				h.logger.Debug().Str("line", line).Msg("Unrecognized hashcat output line")
				continue
			}
			credential.Security = models.SecurityUnknown
			if security, ok := securities[credential.MAC]; ok {
				credential.Security = security
			}
			credentials = append(credentials, credential)
		}
	}

	h.logger.Info().Int("files", len(files)).Int("credentials", len(credentials)).Msg("Hashcat results collected")
	return credentials
}

// securities parses the security class of each access point from the hash files themselves.
func (h *HashcatEnricher) securities(files []string) map[models.MAC]models.SecurityKind {
	securities := make(map[models.MAC]models.SecurityKind)
	for _, path := range files {
		rc, err := h.fileOps.Open(path)
		if err != nil {
			h.logger.Error().Err(err).Str("file", path).Msg("Failed to open hash file")
			continue
		}
		if err := ParseHashFile(rc, securities); err != nil {
			h.logger.Error().Err(err).Str("file", path).Msg("Failed to parse hash file")
		}
		rc.Close()
		h.logger.Debug().Str("file", path).Msg("Parsed security info from hash file")
	}
	return securities
}

func (h *HashcatEnricher) show(ctx context.Context, binary, path string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	stdout, stderr, err := h.runner.Output(ctx, binary, "--show", "-m", constants.HashcatMode, path)
	if err != nil {
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}

	var lines []string
	for _, line := range strings.Split(string(stdout), "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// BindPasswords attaches credentials to access points with the same MAC. An access point
// without an SSID takes the credential's SSID and password; one whose SSID equals the
// credential's takes the password; any other SSID keeps the access point untouched.
// Security is only filled when still unset. It returns how many access points have a password.
func BindPasswords(aps []*models.AccessPoint, credentials []Credential, logger zerolog.Logger) int {
	byMAC := make(map[models.MAC][]Credential, len(credentials))
	for _, c := range credentials {
		byMAC[c.MAC] = append(byMAC[c.MAC], c)
	}

	bound := 0
	for _, ap := range aps {
		for _, c := range byMAC[ap.MAC] {
			switch {
			case ap.SSID == nil:
				ap.SSID = utils.Ptr(c.SSID)
			case *ap.SSID != c.SSID:
				logger.Debug().
					Str("mac", ap.MAC.String()).
					Str("ssid", *ap.SSID).
					Str("cracked_ssid", c.SSID).
					Msg("Cracked SSID differs from observed SSID, password not bound")
				continue
			}
			ap.Password = utils.Ptr(c.Password)
			ap.Security = utils.MergeOptional(ap.Security, utils.Ptr(c.Security))
			logger.Trace().Str("mac", ap.MAC.String()).Str("ssid", c.SSID).Msg("Bound password")
		}
		if ap.Password != nil {
			bound++
		}
	}
	return bound
}
