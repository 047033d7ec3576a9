package registry

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var (
	ErrNotRegistered = errors.New("project file not found")
	ErrNoDomain      = errors.New("no jira domain registered for project")
)

const (
	domainField  = "domain"
	issuesField  = "issues"
	summaryField = "summary"
)

// Registry is the per-repository file recording the project's Jira domain
// and the issue summaries fetched so far. Fields it does not know about
// are carried through rewrites untouched.
type Registry struct {
	fs   afero.Fs
	path string
}

func New(fs afero.Fs, root, fileName string) *Registry {
	return &Registry{fs: fs, path: filepath.Join(root, fileName)}
}

func (r *Registry) Path() string { return r.path }

// Register sets the project's domain, creating the file if needed. It
// returns the domain that was previously registered, if any.
func (r *Registry) Register(domain string) (string, error) {
	doc, err := r.load()
	if err != nil {
		if !errors.Is(err, ErrNotRegistered) {
			return "", err
		}
		doc = document{}
	}
	previous, _ := doc.domain()
	doc[domainField] = domain
	if err := r.save(doc); err != nil {
		return "", err
	}
	return previous, nil
}

func (r *Registry) Domain() (string, error) {
	doc, err := r.load()
	if err != nil {
		return "", err
	}
	domain, ok := doc.domain()
	if !ok {
		return "", errors.Wrapf(ErrNoDomain, "%s", r.path)
	}
	return domain, nil
}

// CachedSummary reports the stored summary for key. An entry without a
// summary counts as a miss.
func (r *Registry) CachedSummary(key string) (string, bool, error) {
	doc, err := r.load()
	if err != nil {
		return "", false, err
	}
	entry, ok := doc.issues()[key].(map[string]any)
	if !ok {
		return "", false, nil
	}
	summary, ok := entry[summaryField].(string)
	return summary, ok, nil
}

// StoreSummary records summary for key and rewrites the whole file.
func (r *Registry) StoreSummary(key, summary string) error {
	doc, err := r.load()
	if err != nil {
		if !errors.Is(err, ErrNotRegistered) {
			return err
		}
		doc = document{}
	}
	issues := doc.issues()
	entry, ok := issues[key].(map[string]any)
	if !ok {
		entry = map[string]any{}
	}
	entry[summaryField] = summary
	issues[key] = entry
	doc[issuesField] = issues
	return r.save(doc)
}

type document map[string]any

func (d document) domain() (string, bool) {
	domain, ok := d[domainField].(string)
	return domain, ok && domain != ""
}

func (d document) issues() map[string]any {
	issues, ok := d[issuesField].(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return issues
}

func (r *Registry) load() (document, error) {
	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNotRegistered, "%s", r.path)
		}
		return nil, errors.Wrap(err, "read project file")
	}

	doc := document{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrapf(err, "parse project file %s", r.path)
	}
	if doc == nil {
		doc = document{}
	}
	return doc, nil
}

func (r *Registry) save(doc document) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "encode project file")
	}
	if err := afero.WriteFile(r.fs, r.path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, "write project file")
	}
	logrus.WithField("path", r.path).Debug("project file saved")
	return nil
}
