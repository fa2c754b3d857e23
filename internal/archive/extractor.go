package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/quantmind-br/scaffold-go/internal/domain"
	"github.com/quantmind-br/scaffold-go/internal/utils"
)

// Extractor unpacks zip archives into a fresh directory
type Extractor struct {
	logger *utils.Logger
}

// ExtractorOptions contains options for creating an Extractor
type ExtractorOptions struct {
	Logger *utils.Logger
}

// NewExtractor creates a new Extractor
func NewExtractor(opts ExtractorOptions) *Extractor {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Extractor{logger: logger.WithComponent("extractor")}
}

// entry is a validated archive member ready to be written
type entry struct {
	file    *zip.File
	rel     string // slash-separated path below the project root
	linkTo  string // symlink target, empty for regular entries
	isDir   bool
	symlink bool
}

// Extract unpacks archivePath so that dest becomes the project root.
//
// Every entry is validated before anything is written. Files are unpacked
// into a staging directory beside dest which is renamed onto dest only
// after all entries succeed, so dest is either absent or complete. When all
// entries share a single top-level directory it is stripped.
func (e *Extractor) Extract(ctx context.Context, archivePath, dest string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return domain.NewExtractError("", fmt.Errorf("%w: %v", domain.ErrCorruptArchive, err))
	}
	defer r.Close()

	entries, root, err := plan(r.File)
	if err != nil {
		return err
	}
	if root != "" {
		e.logger.Debug().Str("root", root).Msg("Stripping top-level archive folder")
	}

	parent := filepath.Dir(dest)
	createdTop, err := makeParents(parent)
	committed := false
	defer func() {
		if !committed {
			removeCreated(parent, createdTop)
		}
	}()
	if err != nil {
		return domain.NewExtractError("", err)
	}

	staging, err := os.MkdirTemp(parent, "."+filepath.Base(dest)+".extract-*")
	if err != nil {
		return domain.NewExtractError("", err)
	}
	defer func() {
		if !committed {
			if rmErr := os.RemoveAll(staging); rmErr != nil {
				e.logger.Warn().Err(rmErr).Str("path", staging).Msg("Failed to remove staging directory")
			}
		}
	}()

	for _, ent := range entries {
		if err := ctx.Err(); err != nil {
			return domain.NewExtractError("", err)
		}
		if err := writeEntry(staging, ent); err != nil {
			return domain.NewExtractError(ent.file.Name, err)
		}
	}

	// MkdirTemp creates 0700 directories
	if err := os.Chmod(staging, 0755); err != nil {
		return domain.NewExtractError("", err)
	}
	if err := os.Rename(staging, dest); err != nil {
		return domain.NewExtractError("", err)
	}
	committed = true

	e.logger.Debug().Str("dest", dest).Int("entries", len(entries)).Msg("Archive extracted")
	return nil
}

// makeParents creates dir and any missing ancestors. It returns the
// outermost directory it created, or "" when dir already existed.
func makeParents(dir string) (string, error) {
	top := ""
	for d := dir; ; d = filepath.Dir(d) {
		if _, err := os.Lstat(d); err == nil {
			break
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		top = d
		if filepath.Dir(d) == d {
			break
		}
	}
	if top == "" {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return top, err
	}
	return top, nil
}

// removeCreated deletes the empty directories makeParents created,
// innermost first, stopping at the first one that is not empty.
func removeCreated(dir, top string) {
	if top == "" {
		return
	}
	for d := dir; ; d = filepath.Dir(d) {
		if err := os.Remove(d); err != nil {
			return
		}
		if d == top {
			return
		}
	}
}

// plan validates every member and computes its final relative path
func plan(files []*zip.File) ([]entry, string, error) {
	type cleaned struct {
		file *zip.File
		name string
	}

	var members []cleaned
	for _, f := range files {
		name, err := cleanName(f.Name)
		if err != nil {
			return nil, "", domain.NewExtractError(f.Name, err)
		}
		if name == "" {
			continue
		}
		members = append(members, cleaned{file: f, name: name})
	}
	if len(members) == 0 {
		return nil, "", domain.NewExtractError("", domain.ErrEmptyArchive)
	}

	names := make([]string, len(members))
	dirs := make(map[string]bool, len(members))
	for i, m := range members {
		names[i] = m.name
		if m.file.FileInfo().IsDir() {
			dirs[m.name] = true
		}
	}
	root := wrapperRoot(names, dirs)

	entries := make([]entry, 0, len(members))
	for _, m := range members {
		rel := m.name
		if root != "" {
			rel = strings.TrimPrefix(strings.TrimPrefix(rel, root), "/")
		}
		if rel == "" {
			continue
		}

		ent := entry{
			file:  m.file,
			rel:   rel,
			isDir: m.file.FileInfo().IsDir(),
		}

		if m.file.Mode()&os.ModeSymlink != 0 {
			target, err := readLinkTarget(m.file)
			if err != nil {
				return nil, "", domain.NewExtractError(m.file.Name, err)
			}
			ent.symlink = true
			ent.isDir = false
			ent.linkTo = strings.ReplaceAll(target, "\\", "/")
		}

		entries = append(entries, ent)
	}
	if len(entries) == 0 {
		return nil, "", domain.NewExtractError("", domain.ErrEmptyArchive)
	}

	if err := checkLinks(entries); err != nil {
		return nil, "", err
	}

	return entries, root, nil
}

// cleanName normalizes an entry name and rejects names that could land
// outside the destination.
func cleanName(name string) (string, error) {
	slashed := strings.ReplaceAll(name, "\\", "/")
	if path.IsAbs(slashed) || filepath.VolumeName(name) != "" || hasDrivePrefix(slashed) {
		return "", fmt.Errorf("%w: absolute path", domain.ErrUnsafeEntry)
	}
	for _, part := range strings.Split(slashed, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: parent directory reference", domain.ErrUnsafeEntry)
		}
	}

	cleaned := path.Clean(slashed)
	if cleaned == "." {
		return "", nil
	}
	return cleaned, nil
}

func hasDrivePrefix(name string) bool {
	return len(name) >= 2 && name[1] == ':' &&
		((name[0] >= 'a' && name[0] <= 'z') || (name[0] >= 'A' && name[0] <= 'Z'))
}

// wrapperRoot returns the single top-level directory shared by all names,
// or "" when the archive has several top-level entries.
func wrapperRoot(names []string, dirs map[string]bool) string {
	first := strings.SplitN(names[0], "/", 2)[0]
	nested := false
	for _, name := range names {
		if name == first {
			if !dirs[name] {
				return ""
			}
			continue
		}
		if !strings.HasPrefix(name, first+"/") {
			return ""
		}
		nested = true
	}
	if !nested {
		return ""
	}
	return first
}

func readLinkTarget(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCorruptArchive, err)
	}
	defer rc.Close()

	// Link targets are short; anything larger is not a real symlink
	data, err := io.ReadAll(io.LimitReader(rc, 4096))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCorruptArchive, err)
	}
	return string(data), nil
}

// checkLinks rejects archives whose symlinks could redirect a write
// outside the project. Link checks are lexical, so a name may appear only
// once, nothing may be written beneath a link, and a link may not resolve
// through another link.
func checkLinks(entries []entry) error {
	links := make(map[string]bool)
	dirOnly := make(map[string]bool, len(entries))
	for _, ent := range entries {
		if onlyDirs, seen := dirOnly[ent.rel]; seen && !(onlyDirs && ent.isDir) {
			return domain.NewExtractError(ent.file.Name,
				fmt.Errorf("%w: duplicate entry %q", domain.ErrUnsafeEntry, ent.rel))
		}
		dirOnly[ent.rel] = ent.isDir
		if ent.symlink {
			links[ent.rel] = true
		}
	}
	if len(links) == 0 {
		return nil
	}

	for _, ent := range entries {
		for dir := path.Dir(ent.rel); dir != "."; dir = path.Dir(dir) {
			if links[dir] {
				return domain.NewExtractError(ent.file.Name,
					fmt.Errorf("%w: entry nested under symlink %q", domain.ErrUnsafeEntry, dir))
			}
		}
		if ent.symlink {
			if err := resolveLink(ent.rel, ent.linkTo, links); err != nil {
				return domain.NewExtractError(ent.file.Name, err)
			}
		}
	}
	return nil
}

// resolveLink walks target from the directory holding the link at rel and
// fails when it leaves the project or passes through another link.
func resolveLink(rel, target string, links map[string]bool) error {
	if target == "" || path.IsAbs(target) || hasDrivePrefix(target) {
		return fmt.Errorf("%w: symlink to %q leaves the project", domain.ErrUnsafeEntry, target)
	}

	var stack []string
	if dir := path.Dir(rel); dir != "." {
		stack = strings.Split(dir, "/")
	}
	for _, part := range strings.Split(target, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(stack) == 0 {
				return fmt.Errorf("%w: symlink to %q leaves the project", domain.ErrUnsafeEntry, target)
			}
			stack = stack[:len(stack)-1]
		default:
			stack = append(stack, part)
			if hop := strings.Join(stack, "/"); links[hop] {
				return fmt.Errorf("%w: symlink to %q passes through symlink %q", domain.ErrUnsafeEntry, target, hop)
			}
		}
	}
	return nil
}

func writeEntry(root string, ent entry) error {
	target := filepath.Join(root, filepath.FromSlash(ent.rel))
	if !utils.IsWithin(root, target) {
		return fmt.Errorf("%w: resolves outside destination", domain.ErrUnsafeEntry)
	}

	switch {
	case ent.isDir:
		return os.MkdirAll(target, dirPerm(ent.file.Mode()))
	case ent.symlink:
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		return os.Symlink(filepath.FromSlash(ent.linkTo), target)
	default:
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		return writeFile(target, ent.file)
	}
}

func writeFile(target string, f *zip.File) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCorruptArchive, err)
	}
	defer rc.Close()

	// O_EXCL refuses to follow a symlink or reuse a path already written
	out, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm(f.Mode()))
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		if errors.Is(err, zip.ErrChecksum) || errors.Is(err, zip.ErrFormat) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %v", domain.ErrCorruptArchive, err)
		}
		return err
	}
	return out.Close()
}

func dirPerm(mode os.FileMode) os.FileMode {
	if perm := mode.Perm(); perm != 0 {
		return perm | 0700
	}
	return 0755
}

func filePerm(mode os.FileMode) os.FileMode {
	if perm := mode.Perm(); perm != 0 {
		return perm | 0600
	}
	return 0644
}
