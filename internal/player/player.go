// Package player launches mpv (with yt-dlp resolving the stream) on a
// selected video. When logged in it exports the session as a Netscape
// cookie jar so yt-dlp can authenticate; the jar holds the live session
// token and is removed on every exit path, including spawn failure.
package player

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"

	"bilitui/internal/credential"
)

const videoURLBase = "https://www.bilibili.com/video/"

// Launcher runs the external player.
type Launcher struct {
	mpvPath string
	jar     *credential.Store
	logger  *zap.Logger
}

// New builds a launcher. mpvPath defaults to "mpv" on PATH.
func New(mpvPath string, jar *credential.Store, logger *zap.Logger) *Launcher {
	if mpvPath == "" {
		mpvPath = "mpv"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{mpvPath: mpvPath, jar: jar, logger: logger}
}

// Play blocks until mpv exits. Pass nil creds for anonymous playback.
func (l *Launcher) Play(ctx context.Context, bvid string, creds *credential.Credentials) error {
	var cookiePath string
	if creds != nil {
		path, err := l.jar.ExportNetscape(*creds)
		if err != nil {
			return fmt.Errorf("export cookies: %w", err)
		}
		cookiePath = path
		defer func() {
			if err := os.Remove(cookiePath); err != nil {
				l.logger.Warn("cookie jar left behind", zap.String("path", cookiePath), zap.Error(err))
			}
		}()
	}

	args := buildArgs(bvid, cookiePath)
	l.logger.Info("launching player", zap.String("bvid", bvid), zap.Bool("authenticated", creds != nil))

	// Stdout and stderr stay detached so mpv cannot scribble over the TUI.
	cmd := exec.CommandContext(ctx, l.mpvPath, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", l.mpvPath, err)
	}
	return nil
}

func buildArgs(bvid, cookiePath string) []string {
	args := []string{"--force-window=immediate"}
	if cookiePath != "" {
		args = append(args, "--ytdl-raw-options=cookies="+cookiePath)
	}
	return append(args, videoURLBase+bvid)
}
