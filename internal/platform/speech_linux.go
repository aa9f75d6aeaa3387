//go:build linux

package platform

import (
	"context"
	"fmt"
	"os/exec"
)

func systemSpeaker() (speakFunc, error) {
	if path, err := exec.LookPath("spd-say"); err == nil {
		return func(ctx context.Context, voice, text string) error {
			args := []string{"--wait"}
			if voice != "" {
				args = append(args, "--synthesis-voice", voice)
			}
			args = append(args, "--", text)
			return runSpeech(ctx, path, args...)
		}, nil
	}
	for _, name := range []string{"espeak-ng", "espeak"} {
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		return func(ctx context.Context, voice, text string) error {
			args := []string{}
			if voice != "" {
				args = append(args, "-v", voice)
			}
			args = append(args, "--", text)
			return runSpeech(ctx, path, args...)
		}, nil
	}
	return nil, ErrSpeechUnavailable
}

func runSpeech(ctx context.Context, path string, args ...string) error {
	output, err := exec.CommandContext(ctx, path, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", path, err, output)
	}
	return nil
}
