//go:build windows

package platform

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
)

func systemSpeaker() (speakFunc, error) {
	path, err := exec.LookPath("powershell.exe")
	if err != nil {
		return nil, ErrSpeechUnavailable
	}
	return func(ctx context.Context, voice, text string) error {
		script := "Add-Type -AssemblyName System.Speech; " +
			"$synth = New-Object System.Speech.Synthesis.SpeechSynthesizer; "
		if voice != "" {
			script += "$synth.SelectVoice(" + psQuote(voice) + "); "
		}
		script += "$synth.Speak(" + psQuote(text) + ")"

		command := exec.CommandContext(ctx, path, "-NoProfile", "-NonInteractive", "-Command", script)
		command.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
		output, err := command.CombinedOutput()
		if err != nil {
			return fmt.Errorf("powershell speech: %w: %s", err, output)
		}
		return nil
	}, nil
}

func psQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
