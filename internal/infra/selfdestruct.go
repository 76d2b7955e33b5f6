package infra

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/proctorhq/proctord/internal/domain"
)

// System-looking helper name patterns. The scrub copy should blend in with
// legitimate system processes for the second or two it exists.
var helperPrefixes = []string{
	"com.apple.cfprefsd",
	"com.apple.metadata",
	"com.apple.xpc",
	"com.apple.coreservices",
}

var helperSuffixes = []string{
	"helper",
	"agent",
	"worker",
	"cleanup",
}

// helperName generates a random system-looking filename for the scrub copy.
func helperName() string {
	prefix := helperPrefixes[randomInt(len(helperPrefixes))]
	suffix := helperSuffixes[randomInt(len(helperSuffixes))]
	return fmt.Sprintf("%s.%s.%s", prefix, suffix, randomHex(6))
}

func randomInt(max int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0
	}
	return int(n.Int64())
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return strings.Repeat("0", n*2)
	}
	return hex.EncodeToString(buf)[:n*2]
}

// InstallPath resolves the path the scrub helper should delete: the
// containing .app bundle when the executable lives inside one, otherwise the
// executable file itself.
func InstallPath() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return "", err
	}

	for dir := filepath.Dir(execPath); dir != "/" && dir != "."; dir = filepath.Dir(dir) {
		if strings.HasSuffix(dir, ".app") {
			return dir, nil
		}
	}
	return execPath, nil
}

// ScrubSpawner implements domain.SelfDestructor. It copies the running
// binary to a temp path under an innocuous name and launches it detached as
// `scrub <target>`. The copy is required: the helper must outlive the
// deletion of the install path it was launched from.
type ScrubSpawner struct {
	linger time.Duration
}

// NewScrubSpawner creates a spawner with the given helper linger.
func NewScrubSpawner(linger time.Duration) *ScrubSpawner {
	return &ScrubSpawner{linger: linger}
}

// Spawn launches the detached scrub helper. Fire-and-forget: the caller is
// already terminating and never inspects the helper's exit code.
func (s *ScrubSpawner) Spawn(installPath string) error {
	self, err := os.Executable()
	if err != nil {
		return err
	}

	helperPath := filepath.Join(os.TempDir(), helperName())
	if err := copyExecutable(self, helperPath); err != nil {
		return fmt.Errorf("copy scrub helper: %w", err)
	}

	cmd := exec.Command(helperPath, "scrub", installPath,
		"--linger", s.linger.String())

	// Detach: new session, no inherited stdio.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	return cmd.Start()
}

// Scrub is the helper-side routine: wait out the parent's exit, delete the
// install path, then delete this executable. Every deletion is best-effort;
// the helper exits successfully regardless, since nothing is left to report
// to.
func Scrub(target string, linger time.Duration) {
	// The parent's bundle may still be mapped while it exits; the linger
	// bounds that race without any synchronization.
	time.Sleep(linger)

	_ = os.RemoveAll(target)

	if self, err := os.Executable(); err == nil {
		_ = os.Remove(self)
	}
}

// copyExecutable copies the binary using the atomic write pattern:
// temp file, sync, chmod, rename.
func copyExecutable(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	dstDir := filepath.Dir(dst)
	tmpFile, err := os.CreateTemp(dstDir, ".pd-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err = io.Copy(tmpFile, sourceFile); err != nil {
		tmpFile.Close()
		return err
	}
	if err = tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return err
	}
	tmpFile.Close()

	if err = os.Chmod(tmpPath, 0755); err != nil {
		return err
	}
	if err = os.Rename(tmpPath, dst); err != nil {
		return err
	}

	success = true
	return nil
}

// Ensure ScrubSpawner implements domain.SelfDestructor.
var _ domain.SelfDestructor = (*ScrubSpawner)(nil)
