package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/mmcdole/neurostream/internal/domain"
)

// Launcher plays trailer URLs in an external player and opens pages in the
// system browser
type Launcher struct {
	command string   // configured player command, empty for auto-detection
	args    []string // additional arguments for the player
	logger  *slog.Logger

	// lookPath and start are swapped out in tests
	lookPath func(string) (string, error)
	start    func(name string, args ...string) (*exec.Cmd, error)
}

// launchPath defines a single way to launch a player
type launchPath struct {
	path      string   // Command path: "mpv", "vlc", or "open-a:AppName"
	openFlags []string // For "open-a:" paths only - flags for macOS open command
}

// playerConfig defines platform-specific launch configurations for a player
type playerConfig struct {
	streamArgs []string                // Args that make the player stream a YouTube page URL
	platforms  map[string][]launchPath // Platform -> launch paths to try in order
}

// players registry. Every entry can resolve YouTube URLs on its own
// (mpv-based players through yt-dlp).
var players = map[string]playerConfig{
	"mpv": {
		streamArgs: []string{"--force-window=immediate", "--ytdl-format=bestvideo[height<=1080]+bestaudio/best"},
		platforms: map[string][]launchPath{
			"darwin":  {{path: "mpv"}},
			"linux":   {{path: "mpv"}},
			"windows": {{path: "mpv"}},
		},
	},
	"vlc": {
		streamArgs: []string{"--play-and-exit"},
		platforms: map[string][]launchPath{
			"darwin": {
				{path: "vlc"},
				{path: "open-a:VLC"},
			},
			"linux":   {{path: "vlc"}},
			"windows": {{path: "vlc"}},
		},
	},
	"iina": {
		platforms: map[string][]launchPath{
			"darwin": {
				{path: "open-a:IINA", openFlags: []string{"-n"}},
			},
		},
	},
	"celluloid": {
		platforms: map[string][]launchPath{
			"linux": {{path: "celluloid"}},
		},
	},
	"haruna": {
		platforms: map[string][]launchPath{
			"linux": {{path: "haruna"}},
		},
	},
}

// candidatePlayers defines the preferred player order for each platform
var candidatePlayers = map[string][]string{
	"darwin":  {"iina", "mpv", "vlc"},
	"linux":   {"mpv", "celluloid", "haruna", "vlc"},
	"windows": {"mpv", "vlc"},
}

// NewLauncher creates a Launcher. An empty command auto-detects a player.
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:  command,
		args:     args,
		logger:   logger,
		lookPath: exec.LookPath,
		start:    startDetached,
	}
}

// startDetached starts a process without waiting for it
func startDetached(name string, args ...string) (*exec.Cmd, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}

// Play starts the URL in the configured player, the first detected candidate,
// or the system default handler
func (l *Launcher) Play(url string) (domain.Playback, error) {
	// Tier 1: User configured a specific player
	if l.command != "" {
		l.logger.Info("using configured player", "command", l.command)
		return l.launchConfigured(url)
	}

	// Tier 2: Try candidate chain
	if pb, err := l.detectAndLaunch(url); err == nil {
		return pb, nil
	}

	// Tier 3: Fall back to system default (open/xdg-open/start)
	l.logger.Info("no candidate players found, using system default")
	if err := l.OpenURL(url); err != nil {
		return nil, err
	}
	return domain.NoPlayback{}, nil
}

// detectAndLaunch tries candidate players in order using configured launch paths
func (l *Launcher) detectAndLaunch(url string) (domain.Playback, error) {
	candidates, ok := candidatePlayers[runtime.GOOS]
	if !ok {
		candidates = candidatePlayers["linux"]
	}

	for _, playerName := range candidates {
		player, exists := players[playerName]
		if !exists {
			continue
		}

		launchPaths, ok := player.platforms[runtime.GOOS]
		if !ok {
			continue
		}

		for _, lp := range launchPaths {
			var (
				pb  domain.Playback
				err error
			)
			if strings.HasPrefix(lp.path, "open-a:") {
				appName := strings.TrimPrefix(lp.path, "open-a:")
				err = tryOpenWithApp(appName, url, player.streamArgs, lp.openFlags)
				pb = domain.NoPlayback{}
			} else {
				pb, err = l.tryLaunchWithCommand(lp.path, url, player.streamArgs)
			}

			if err == nil {
				l.logger.Info("launched with detected player", "player", playerName, "path", lp.path)
				return pb, nil
			}
			l.logger.Debug("launch path not available", "player", playerName, "path", lp.path, "error", err)
		}
	}

	return nil, fmt.Errorf("no candidate players found")
}

// tryOpenWithApp opens the URL with a macOS app using "open -a".
// The app outlives the call, so the result cannot be stopped.
func tryOpenWithApp(appName string, url string, playerArgs []string, openFlags []string) error {
	cmdArgs := make([]string, len(openFlags))
	copy(cmdArgs, openFlags)

	cmdArgs = append(cmdArgs, "-a", appName)
	if len(playerArgs) > 0 {
		cmdArgs = append(cmdArgs, "--args")
		cmdArgs = append(cmdArgs, playerArgs...)
	}
	cmdArgs = append(cmdArgs, url)

	// Run() waits for open to return and fails if the app is missing
	return exec.Command("open", cmdArgs...).Run()
}

// tryLaunchWithCommand starts a player found in PATH
func (l *Launcher) tryLaunchWithCommand(command string, url string, args []string) (domain.Playback, error) {
	if _, err := l.lookPath(command); err != nil {
		return nil, err
	}
	cmdArgs := append(append([]string{}, args...), url)
	cmd, err := l.start(command, cmdArgs...)
	if err != nil {
		return nil, err
	}
	return newProcessPlayback(cmd), nil
}

// launchConfigured launches the URL using the configured player
func (l *Launcher) launchConfigured(url string) (domain.Playback, error) {
	args := append([]string{}, l.args...)

	// On macOS, launch GUI apps with 'open -a' if the command is not in PATH
	if runtime.GOOS == "darwin" {
		if _, err := l.lookPath(l.command); err != nil {
			openFlags := []string{}
			base := strings.ToLower(filepath.Base(l.command))
			base = strings.TrimSuffix(base, filepath.Ext(base))
			if playerCfg, ok := players[base]; ok {
				for _, lp := range playerCfg.platforms["darwin"] {
					if strings.HasPrefix(lp.path, "open-a:") {
						openFlags = lp.openFlags
						break
					}
				}
			}
			l.logger.Info("using macOS 'open -a' to launch GUI app", "app", l.command)
			if err := tryOpenWithApp(l.command, url, args, openFlags); err != nil {
				return nil, err
			}
			return domain.NoPlayback{}, nil
		}
	}

	l.logger.Info("launching player", "command", l.command, "args", args, "url", url)
	cmd, err := l.start(l.command, append(args, url)...)
	if err != nil {
		return nil, err
	}
	return newProcessPlayback(cmd), nil
}

// OpenURL opens the URL using the system default handler
func (l *Launcher) OpenURL(url string) error {
	var name string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		name, args = "open", []string{url}
	case "windows":
		name, args = "cmd", []string{"/c", "start", "", url}
	default:
		// Linux and other Unix-like systems
		name, args = "xdg-open", []string{url}
	}

	l.logger.Info("launching with system default", "os", runtime.GOOS, "url", url)

	cmd, err := l.start(name, args...)
	if err != nil {
		return err
	}
	// The opener exits once it hands off; reap it
	go cmd.Wait()
	return nil
}

// processPlayback is a player process we started ourselves
type processPlayback struct {
	cmd  *exec.Cmd
	done chan struct{}
	once sync.Once
}

func newProcessPlayback(cmd *exec.Cmd) *processPlayback {
	p := &processPlayback{cmd: cmd, done: make(chan struct{})}
	go func() {
		if cmd.Process != nil {
			cmd.Wait()
		}
		close(p.done)
	}()
	return p
}

// Stop kills the player if it is still running
func (p *processPlayback) Stop() error {
	var err error
	p.once.Do(func() {
		select {
		case <-p.done:
			return
		default:
		}
		if p.cmd.Process == nil {
			return
		}
		if kerr := p.cmd.Process.Kill(); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
			err = kerr
		}
	})
	return err
}
