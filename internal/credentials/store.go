package credentials

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"

	"github.com/oktatools/oktaws/models"
)

// SharedCredentialsEnv overrides the location of the AWS shared
// credentials file, matching the AWS CLI's own variable.
const SharedCredentialsEnv = "AWS_SHARED_CREDENTIALS_FILE"

const (
	accessKeyIDKey     = "aws_access_key_id"
	secretAccessKeyKey = "aws_secret_access_key"
	sessionTokenKey    = "aws_session_token"
)

func init() {
	// The AWS credentials file is flat key=value with CRLF endings;
	// keep ini.v1's output byte-compatible with what the CLI writes.
	ini.PrettyFormat = false
	ini.PrettySection = false
	ini.LineBreak = "\r\n"
}

// ConflictError is returned when an STS upsert targets a profile that
// holds a long-lived IAM key pair. Those entries are never replaced.
type ConflictError struct {
	Profile string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("profile %q does not contain STS credentials; refusing to overwrite", e.Profile)
}

// Store owns the shared credentials file for the lifetime of the
// process. Profiles are mutated in memory through Upsert and written
// back exactly once by Save, which rewrites the whole file.
type Store struct {
	file     afero.File
	profiles map[string]models.ProfileCredentials
}

// NewStore opens the credentials file at its configured location:
// AWS_SHARED_CREDENTIALS_FILE if set, otherwise ~/.aws/credentials.
func NewStore(fs afero.Fs) (*Store, error) {
	path := os.Getenv(SharedCredentialsEnv)
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, ".aws", "credentials")
	}

	return Load(fs, path)
}

// Load opens path read/write, creating it (and its directory) if
// absent, and parses any existing content. An empty or new file is an
// empty store. Duplicate sections collapse in file read order, so the
// last occurrence of a profile wins.
func Load(fs afero.Fs, path string) (*Store, error) {
	if err := fs.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating credentials directory: %w", err)
	}

	file, err := fs.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening credentials file %s: %w", path, err)
	}

	content, err := io.ReadAll(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("reading credentials file %s: %w", path, err)
	}

	profiles, err := parseProfiles(content)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("parsing credentials file %s: %w", path, err)
	}

	return &Store{file: file, profiles: profiles}, nil
}

func parseProfiles(content []byte) (map[string]models.ProfileCredentials, error) {
	cfg, err := ini.Load(content)
	if err != nil {
		return nil, err
	}

	profiles := make(map[string]models.ProfileCredentials)
	for _, section := range cfg.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		profiles[section.Name()] = models.ProfileCredentials{
			AccessKeyID:     section.Key(accessKeyIDKey).String(),
			SecretAccessKey: section.Key(secretAccessKeyKey).String(),
			SessionToken:    section.Key(sessionTokenKey).String(),
		}
	}

	return profiles, nil
}

// Profile returns the stored credentials for name, if any.
func (s *Store) Profile(name string) (models.ProfileCredentials, bool) {
	creds, ok := s.profiles[name]
	return creds, ok
}

// Upsert inserts or replaces the entry for name. Existing STS-managed
// entries are overwritten in full; an existing IAM entry is left
// untouched and the write is refused with a ConflictError.
func (s *Store) Upsert(name string, creds models.ProfileCredentials) error {
	if existing, ok := s.profiles[name]; ok && !existing.IsSts() {
		return &ConflictError{Profile: name}
	}

	s.profiles[name] = creds
	return nil
}

// Save rewrites the file from the in-memory profile map, sections in
// sorted profile-name order. The file is truncated first so a shorter
// rewrite cannot leave trailing content from a previous run.
func (s *Store) Save() error {
	logrus.Debug("Saving AWS credentials")

	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding credentials file: %w", err)
	}
	if err := s.file.Truncate(0); err != nil {
		return fmt.Errorf("truncating credentials file: %w", err)
	}

	cfg := ini.Empty()
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		creds := s.profiles[name]
		section, err := cfg.NewSection(name)
		if err != nil {
			return fmt.Errorf("serializing profile %q: %w", name, err)
		}
		if _, err := section.NewKey(accessKeyIDKey, creds.AccessKeyID); err != nil {
			return err
		}
		if _, err := section.NewKey(secretAccessKeyKey, creds.SecretAccessKey); err != nil {
			return err
		}
		if creds.IsSts() {
			if _, err := section.NewKey(sessionTokenKey, creds.SessionToken); err != nil {
				return err
			}
		}
	}

	if _, err := cfg.WriteTo(s.file); err != nil {
		return fmt.Errorf("writing credentials file: %w", err)
	}

	return s.file.Sync()
}

// Close releases the underlying file handle.
func (s *Store) Close() error {
	return s.file.Close()
}
