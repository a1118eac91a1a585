// Package submission validates and persists the contact form and raw upload
// that accompany every dataset.
package submission

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/attrition-cli/internal/utils"
)

const stampLayout = "20060102_150405"

// Form is the contact information submitted with an upload.
type Form struct {
	Name     string `json:"name" yaml:"name" validate:"required"`
	Email    string `json:"email" yaml:"email" validate:"required"`
	Phone    string `json:"phone" yaml:"phone" validate:"required"`
	Company  string `json:"company,omitempty" yaml:"company,omitempty"`
	Filename string `json:"filename" yaml:"filename" validate:"required"`
}

func (f Form) trimmed() Form {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Company = strings.TrimSpace(f.Company)
	f.Filename = strings.TrimSpace(f.Filename)
	return f
}

// Record is a persisted submission.
type Record struct {
	ID          string    `json:"id" yaml:"id"`
	Form        Form      `json:"form" yaml:"form"`
	Size        int       `json:"size" yaml:"size"`
	SubmittedAt time.Time `json:"submitted_at" yaml:"submitted_at"`
	Upload      string    `json:"upload" yaml:"upload"`

	// Not serialized: on-disk locations.
	FormPath   string `json:"form_path" yaml:"-"`
	UploadPath string `json:"upload_path" yaml:"-"`
}

// FieldError names one invalid form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every problem with a submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return "invalid submission: missing " + strings.Join(names, ", ")
}

// Store persists submissions as flat files in one directory.
type Store struct {
	dir      string
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time

	mu sync.Mutex
}

// NewStore returns a store rooted at dir. The directory is created on first save.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Store{
		dir:      dir,
		validate: v,
		logger:   logger.With(slog.String("component", "submission")),
		now:      time.Now,
	}
}

// Dir returns the storage directory.
func (s *Store) Dir() string { return s.dir }

// Validate checks the required fields and that an upload is present.
func (s *Store) Validate(form Form, data []byte) error {
	form = form.trimmed()
	var fields []FieldError
	if err := s.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate form: %w", err)
		}
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Message: fmt.Sprintf("%s is required", fe.Field())})
		}
	}
	if len(data) == 0 {
		fields = append(fields, FieldError{Field: "file", Message: "an uploaded file is required"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Save validates the form and writes two files: "<name>_<stamp>.yaml" with the
// form fields and "<name>_<stamp>_<filename>" with the raw upload. Both are
// written atomically. A second submission from the same name within the same
// second gets a "__2", "__3", ... suffix.
func (s *Store) Save(form Form, data []byte) (*Record, error) {
	form = form.trimmed()
	if err := s.Validate(form, data); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := utils.EnsureDir(s.dir); err != nil {
		return nil, fmt.Errorf("ensure submissions dir: %w", err)
	}
	at := s.now()
	stem, err := s.freeStem(utils.SafeName(form.Name, "anonymous") + "_" + at.Format(stampLayout))
	if err != nil {
		return nil, err
	}
	rec := &Record{
		ID:          uuid.NewString(),
		Form:        form,
		Size:        len(data),
		SubmittedAt: at,
		Upload:      stem + "_" + utils.SafeName(filepath.Base(form.Filename), "upload"),
		FormPath:    filepath.Join(s.dir, stem+".yaml"),
	}
	rec.UploadPath = filepath.Join(s.dir, rec.Upload)

	if err := utils.SafeWriteFile(rec.UploadPath, data); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	out, err := yaml.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal submission: %w", err)
	}
	if err := utils.SafeWriteFile(rec.FormPath, out); err != nil {
		_ = os.Remove(rec.UploadPath)
		return nil, fmt.Errorf("save submission: %w", err)
	}
	s.logger.Info("submission saved",
		slog.String("id", rec.ID),
		slog.String("form", rec.FormPath),
		slog.Int("bytes", rec.Size))
	return rec, nil
}

func (s *Store) freeStem(base string) (string, error) {
	stem := base
	for n := 2; ; n++ {
		_, err := os.Stat(filepath.Join(s.dir, stem+".yaml"))
		if errors.Is(err, fs.ErrNotExist) {
			return stem, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat submission: %w", err)
		}
		stem = fmt.Sprintf("%s__%d", base, n)
	}
}

// List returns every persisted submission ordered by submission time. A missing
// directory yields an empty list.
func (s *Store) List() ([]*Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read submissions dir: %w", err)
	}
	var out []*Record
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read submission: %w", err)
		}
		var rec Record
		if err := yaml.Unmarshal(b, &rec); err != nil {
			s.logger.Warn("skipping unreadable submission", slog.String("path", path), slog.Any("error", err))
			continue
		}
		if rec.ID == "" {
			continue
		}
		rec.FormPath = path
		rec.UploadPath = filepath.Join(s.dir, rec.Upload)
		out = append(out, &rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].FormPath < out[j].FormPath
		}
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out, nil
}
