package kiosk

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// LaunchDecision is the outcome of inspecting the command line at startup.
type LaunchDecision struct {
	Mode     Mode
	ExamID   string
	SEBFile  string
	StartURL string
}

// DecideLaunch picks the launch mode from the first readable *.seb argument.
// Unreadable, malformed or non-exam files fall back to a normal launch.
func DecideLaunch(args []string, development bool, log zerolog.Logger) LaunchDecision {
	normal := LaunchDecision{Mode: ModeNormal}

	path, data, ok := findSEBFile(args)
	if !ok {
		return normal
	}

	startURL, err := ParseSEBFile(data)
	if err != nil {
		log.Warn().Err(err).Str("file", path).Msg("Ignoring malformed .seb file")
		return normal
	}

	examID := LockedExamID(startURL)
	if examID == "" {
		log.Warn().Str("file", path).Str("start_url", startURL).Msg("Start URL does not name an exam, launching normally")
		return normal
	}

	mode := ModeLockedProd
	if development {
		mode = ModeLockedDev
	}
	return LaunchDecision{Mode: mode, ExamID: examID, SEBFile: path, StartURL: startURL}
}

// Locked reports whether the launch targets a single exam.
func (d LaunchDecision) Locked() bool {
	return d.Mode != ModeNormal
}

func findSEBFile(args []string) (string, []byte, bool) {
	for _, arg := range args {
		if !strings.HasSuffix(strings.ToLower(arg), ".seb") {
			continue
		}
		info, err := os.Stat(arg)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		data, err := os.ReadFile(arg)
		if err != nil {
			continue
		}
		return arg, data, true
	}
	return "", nil, false
}
