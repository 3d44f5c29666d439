package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ErrToolNotFound is returned when no jpegtran executable can be located.
var ErrToolNotFound = errors.New("compose: jpegtran executable not found")

// Jpegtran implements Tool by shelling out to the jpegtran binary, which can
// crop, drop and optimize JPEGs without recoding pixel data.
type Jpegtran struct {
	// Path is the jpegtran executable.
	Path string
}

// FindJpegtran locates the jpegtran executable: the explicit path if given,
// otherwise a binary next to the running executable, otherwise $PATH.
func FindJpegtran(explicit string) (string, error) {
	if explicit != "" {
		if err := checkExecutable(explicit); err != nil {
			return "", err
		}
		return explicit, nil
	}

	name := "jpegtran"
	if runtime.GOOS == "windows" {
		name = "jpegtran.exe"
	}

	if self, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(self), name)
		if checkExecutable(sibling) == nil {
			return sibling, nil
		}
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", ErrToolNotFound
	}
	return path, nil
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrToolNotFound, path)
	}
	if info.IsDir() || (runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0) {
		return fmt.Errorf("compose: %s is not executable", path)
	}
	return nil
}

// AllocateCanvas crops the seed tile to the full target dimensions, which
// extends it with blank blocks: jpegtran's -crop grows the image when the
// requested region exceeds the source.
func (j *Jpegtran) AllocateCanvas(ctx context.Context, width, height int, seedTile, dest string) error {
	return j.run(ctx,
		"-copy", "all",
		"-crop", fmt.Sprintf("%dx%d+0+0", width, height),
		"-outfile", dest,
		seedTile,
	)
}

// PlaceTile drops the tile into the canvas at the given pixel offset.
func (j *Jpegtran) PlaceTile(ctx context.Context, canvas, tile string, offsetX, offsetY int, dest string) error {
	return j.run(ctx,
		"-copy", "all",
		"-drop", fmt.Sprintf("+%d+%d", offsetX, offsetY), tile,
		"-outfile", dest,
		canvas,
	)
}

// OptimizeAndEmit writes an entropy-optimized copy of the canvas to outputPath.
func (j *Jpegtran) OptimizeAndEmit(ctx context.Context, canvas, outputPath string) error {
	return j.run(ctx,
		"-copy", "all",
		"-optimize",
		"-outfile", outputPath,
		canvas,
	)
}

func (j *Jpegtran) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, j.Path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := bytes.TrimSpace(stderr.Bytes())
		if len(msg) > 0 {
			return fmt.Errorf("jpegtran %v: %w: %s", args, err, msg)
		}
		return fmt.Errorf("jpegtran %v: %w", args, err)
	}
	return nil
}
