package repositories

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"vrp-search-service/internal/domain"
	"vrp-search-service/internal/platform/obs"
	"vrp-search-service/internal/ports"
)

var instanceExts = []string{".yaml", ".yml", ".json"}

// Directory-backed implementation of the ProblemRepository port. Each file
// <id>.yaml, <id>.yml or <id>.json holds one instance document.
type FileInstanceRepository struct {
	Dir      string
	Matrices ports.MatrixProvider
}

func NewFileInstanceRepository(dir string, matrices ports.MatrixProvider) *FileInstanceRepository {
	return &FileInstanceRepository{Dir: dir, Matrices: matrices}
}

// Return summaries of all instance documents in the directory.
func (r *FileInstanceRepository) ListInstances(ctx context.Context) (_ []domain.InstanceInfo, err error) {
	defer obs.Time(ctx, "instances.file.List")(&err)

	docs, err := readInstanceDir(r.Dir)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}

	out := make([]domain.InstanceInfo, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.doc.Info(d.id))
	}
	return out, nil
}

func (r *FileInstanceRepository) GetInstance(ctx context.Context, id string) (_ *domain.ProblemData, err error) {
	defer obs.Time(ctx, "instances.file.Get")(&err)

	if !validInstanceID(id) {
		return nil, fmt.Errorf("get instance %q: %w", id, domain.ErrNotFound)
	}

	for _, ext := range instanceExts {
		doc, err := ReadInstanceFile(filepath.Join(r.Dir, id+ext))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get instance %q: %w", id, err)
		}
		data, err := doc.ProblemData(ctx, r.Matrices)
		if err != nil {
			return nil, fmt.Errorf("get instance %q: %w", id, err)
		}
		return data, nil
	}

	return nil, fmt.Errorf("get instance %q: %w", id, domain.ErrNotFound)
}

func validInstanceID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..")
}

type namedDocument struct {
	id  string
	doc InstanceDocument
}

// readInstanceDir parses every instance document in dir, ordered by id.
func readInstanceDir(dir string) ([]namedDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	out := make([]namedDocument, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if !slices.Contains(instanceExts, ext) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ext)
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("instance id %q defined by more than one file", id)
		}
		seen[id] = struct{}{}

		doc, err := ReadInstanceFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, namedDocument{id: id, doc: doc})
	}

	slices.SortFunc(out, func(a, b namedDocument) int { return strings.Compare(a.id, b.id) })
	return out, nil
}
