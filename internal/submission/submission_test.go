package submission

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func fixedStore(t *testing.T, at time.Time) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "submissions"), nil)
	s.now = func() time.Time { return at }
	return s
}

func validForm() Form {
	return Form{Name: "Jane Doe", Email: "jane@example.com", Phone: "555-0100", Company: "Acme", Filename: "hr data.csv"}
}

func TestValidateReportsEveryMissingField(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	err := s.Validate(Form{Name: "  ", Company: "Acme"}, nil)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	var fields []string
	for _, f := range ve.Fields {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{"name", "email", "phone", "filename", "file"}, fields)
	assert.Contains(t, err.Error(), "missing name, email")
}

func TestValidateCompanyIsOptional(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	f := validForm()
	f.Company = ""
	assert.NoError(t, s.Validate(f, []byte("x")))
}

func TestSaveWritesFormAndUpload(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	s := fixedStore(t, at)
	data := []byte("EmployeeNumber,Attrition\n1,Yes\n")

	rec, err := s.Save(validForm(), data)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(s.Dir(), "Jane_Doe_20240309_140507.yaml"), rec.FormPath)
	assert.Equal(t, filepath.Join(s.Dir(), "Jane_Doe_20240309_140507_hr_data.csv"), rec.UploadPath)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, len(data), rec.Size)

	raw, err := os.ReadFile(rec.UploadPath)
	require.NoError(t, err)
	assert.Equal(t, data, raw)

	b, err := os.ReadFile(rec.FormPath)
	require.NoError(t, err)
	var onDisk Record
	require.NoError(t, yaml.Unmarshal(b, &onDisk))
	assert.Equal(t, rec.ID, onDisk.ID)
	assert.Equal(t, "jane@example.com", onDisk.Form.Email)
	assert.True(t, at.Equal(onDisk.SubmittedAt))
}

func TestSaveRejectsInvalidWithoutWriting(t *testing.T) {
	s := fixedStore(t, time.Now())
	_, err := s.Save(validForm(), nil)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))

	_, statErr := os.Stat(s.Dir())
	assert.True(t, os.IsNotExist(statErr), "nothing persisted")
}

func TestSaveSameSecondCollision(t *testing.T) {
	s := fixedStore(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	var paths []string
	for i := 0; i < 3; i++ {
		rec, err := s.Save(validForm(), []byte("a,b\n1,2\n"))
		require.NoError(t, err)
		paths = append(paths, filepath.Base(rec.FormPath))
	}
	assert.Equal(t, []string{
		"Jane_Doe_20240102_030405.yaml",
		"Jane_Doe_20240102_030405__2.yaml",
		"Jane_Doe_20240102_030405__3.yaml",
	}, paths)
}

func TestSaveSanitisesHostileNames(t *testing.T) {
	s := fixedStore(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))
	f := validForm()
	f.Name = "../../root"
	f.Filename = "../secret/.bashrc"

	rec, err := s.Save(f, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, s.Dir(), filepath.Dir(rec.FormPath))
	assert.Equal(t, s.Dir(), filepath.Dir(rec.UploadPath))
	assert.Equal(t, "root_20240102_030405_bashrc", filepath.Base(rec.UploadPath))
}

func TestListOrdersBySubmissionTime(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "subs"), nil)

	late := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	early := late.Add(-time.Hour)
	for _, tc := range []struct {
		name string
		at   time.Time
	}{{"Zed", late}, {"Amy", early}} {
		s.now = func() time.Time { return tc.at }
		f := validForm()
		f.Name = tc.name
		_, err := s.Save(f, []byte("x"))
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.yaml"), []byte("::: not yaml"), 0o644))

	recs, err := s.List()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Amy", recs[0].Form.Name)
	assert.Equal(t, "Zed", recs[1].Form.Name)
	assert.FileExists(t, recs[0].UploadPath)
}

func TestListMissingDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "none"), nil)
	recs, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, recs)
}
