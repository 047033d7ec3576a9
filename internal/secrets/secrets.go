package secrets

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var (
	ErrStoreNotFound  = errors.New("secrets file not found")
	ErrDomainNotFound = errors.New("domain not registered")
)

// Entry holds the credentials for one Jira domain.
type Entry struct {
	Email   string `json:"email"`
	APIKey  string `json:"api_key"`
	CloudID string `json:"cloud_id"`
}

// Store is the user-global file mapping a domain to its credentials.
type Store struct {
	fs   afero.Fs
	path string
}

func NewStore(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

// Register writes entry under domain, replacing any previous entry, and
// creates the file when it does not exist yet. Fields the store does not
// know about, in this domain's entry or any other, are kept.
func (s *Store) Register(domain string, entry Entry) error {
	raw, err := s.load()
	if err != nil {
		if !errors.Is(err, ErrStoreNotFound) {
			return err
		}
		raw = map[string]json.RawMessage{}
	}

	fields := map[string]any{}
	if existing, ok := raw[domain]; ok {
		// A non-object entry is replaced wholesale.
		_ = json.Unmarshal(existing, &fields)
		if fields == nil {
			fields = map[string]any{}
		}
	}
	fields["email"] = entry.Email
	fields["api_key"] = entry.APIKey
	fields["cloud_id"] = entry.CloudID

	encoded, err := encode(fields, "")
	if err != nil {
		return err
	}
	raw[domain] = encoded
	return s.save(raw)
}

func (s *Store) Lookup(domain string) (Entry, error) {
	raw, err := s.load()
	if err != nil {
		return Entry{}, err
	}
	data, ok := raw[domain]
	if !ok {
		return Entry{}, errors.Wrapf(ErrDomainNotFound, "domain %s", domain)
	}
	return s.decodeEntry(domain, data)
}

// All returns every registered entry keyed by domain, along with the
// domains in sorted order.
func (s *Store) All() (map[string]Entry, []string, error) {
	raw, err := s.load()
	if err != nil {
		return nil, nil, err
	}
	entries := make(map[string]Entry, len(raw))
	domains := make([]string, 0, len(raw))
	for domain, data := range raw {
		entry, err := s.decodeEntry(domain, data)
		if err != nil {
			return nil, nil, err
		}
		entries[domain] = entry
		domains = append(domains, domain)
	}
	sort.Strings(domains)
	return entries, domains, nil
}

func (s *Store) decodeEntry(domain string, data json.RawMessage) (Entry, error) {
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, errors.Wrapf(err, "parse secrets entry %s", domain)
	}
	return entry, nil
}

func (s *Store) load() (map[string]json.RawMessage, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrStoreNotFound, "%s", s.path)
		}
		return nil, errors.Wrap(err, "read secrets")
	}

	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "parse secrets %s", s.path)
	}
	if raw == nil {
		raw = map[string]json.RawMessage{}
	}
	return raw, nil
}

func (s *Store) save(raw map[string]json.RawMessage) error {
	data, err := encode(raw, "    ")
	if err != nil {
		return err
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "create secrets dir")
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o600); err != nil {
		return errors.Wrap(err, "write secrets")
	}
	if err := s.fs.Chmod(s.path, 0o600); err != nil {
		return errors.Wrap(err, "chmod secrets")
	}

	logrus.WithField("path", s.path).Debug("secrets saved")
	return nil
}

// encode marshals v without HTML escaping. The result ends in a newline.
func encode(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "encode secrets")
	}
	return buf.Bytes(), nil
}
