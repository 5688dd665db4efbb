package install

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/skiffworks/skiff-launcher/internal/platform"
	"github.com/skiffworks/skiff-launcher/internal/release"
)

func TestUpgraderRun(t *testing.T) {
	srv, _ := releaseServer(t, "1.3.0", "upgraded image")
	dir := installedTree(t)

	client := release.NewClient(release.DefaultRetryConfig())
	provider, err := release.NewProvider(srv.URL+"/latest.yml", client)
	if err != nil {
		t.Fatal(err)
	}
	rel, err := provider.Latest(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	u := &Upgrader{
		Client:   client,
		Platform: platform.Info{Triple: testTriple},
		Installation: &Installation{
			Root:        dir,
			WrapperPath: filepath.Join(dir, WrapperName),
			BinaryPath:  filepath.Join(dir, RealBinaryName),
		},
	}
	if err := u.Run(context.Background(), rel); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(dir, RealBinaryName))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "upgraded image" {
		t.Errorf("binary after upgrade = %q", got)
	}

	// The wrapper is never touched by a binary upgrade.
	wrapper, err := os.ReadFile(filepath.Join(dir, WrapperName))
	if err != nil {
		t.Fatal(err)
	}
	if string(wrapper) != "bits" {
		t.Errorf("wrapper modified during upgrade: %q", wrapper)
	}
}

func TestUpgraderMissingArtifact(t *testing.T) {
	srv, _ := releaseServer(t, "1.3.0", "upgraded image")
	dir := installedTree(t)

	client := release.NewClient(release.DefaultRetryConfig())
	provider, err := release.NewProvider(srv.URL+"/latest.yml", client)
	if err != nil {
		t.Fatal(err)
	}
	rel, err := provider.Latest(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	u := &Upgrader{
		Client:   client,
		Platform: platform.Info{Triple: "aarch64-unknown-linux-musl"},
		Installation: &Installation{
			Root:        dir,
			WrapperPath: filepath.Join(dir, WrapperName),
			BinaryPath:  filepath.Join(dir, RealBinaryName),
		},
	}
	if err := u.Run(context.Background(), rel); err == nil {
		t.Fatal("Run succeeded with no artifact for the platform")
	}

	// The installed binary must be untouched after a failed upgrade.
	got, _ := os.ReadFile(filepath.Join(dir, RealBinaryName))
	if string(got) != "bits" {
		t.Errorf("binary modified by failed upgrade: %q", got)
	}
}

// A wrapper launched during an in-progress replacement must see either the
// complete old image or the complete new one, never a partial write.
func TestReplaceBinaryConcurrentReaders(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, RealBinaryName)

	oldImg := bytes.Repeat([]byte("old image "), 4096)
	newImg := bytes.Repeat([]byte("new image! "), 4096)
	if err := os.WriteFile(target, oldImg, 0755); err != nil {
		t.Fatal(err)
	}

	stagedOld := filepath.Join(t.TempDir(), "staged-old")
	stagedNew := filepath.Join(t.TempDir(), "staged-new")
	if err := os.WriteFile(stagedOld, oldImg, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stagedNew, newImg, 0644); err != nil {
		t.Fatal(err)
	}

	stop := make(chan struct{})
	errs := make(chan error, 4)
	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				got, err := os.ReadFile(target)
				if err != nil {
					// The swap is two renames; a reader can land in the
					// instant the path is vacated. What must never be
					// observable is a truncated or mixed image.
					if os.IsNotExist(err) {
						continue
					}
					errs <- err
					return
				}
				if !bytes.Equal(got, oldImg) && !bytes.Equal(got, newImg) {
					errs <- fmt.Errorf("read %d bytes matching neither complete image", len(got))
					return
				}
			}
		}()
	}

	for i := 0; i < 25; i++ {
		staged := stagedNew
		if i%2 == 1 {
			staged = stagedOld
		}
		if err := ReplaceBinary(staged, target); err != nil {
			close(stop)
			wg.Wait()
			t.Fatal(err)
		}
	}

	close(stop)
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
