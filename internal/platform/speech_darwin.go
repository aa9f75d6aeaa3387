//go:build darwin

package platform

import (
	"context"
	"fmt"
	"os/exec"
)

func systemSpeaker() (speakFunc, error) {
	path, err := exec.LookPath("say")
	if err != nil {
		return nil, ErrSpeechUnavailable
	}
	return func(ctx context.Context, voice, text string) error {
		args := []string{}
		if voice != "" {
			args = append(args, "-v", voice)
		}
		args = append(args, "--", text)
		output, err := exec.CommandContext(ctx, path, args...).CombinedOutput()
		if err != nil {
			return fmt.Errorf("say: %w: %s", err, output)
		}
		return nil
	}, nil
}
