package materials

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FileKind string

const (
	FileKindSyllabus FileKind = "syllabus"
	FileKindSchedule FileKind = "schedule"
	FileKindTemplate FileKind = "template"
)

func ParseFileKind(s string) (FileKind, bool) {
	switch FileKind(s) {
	case FileKindSyllabus, FileKindSchedule, FileKindTemplate:
		return FileKind(s), true
	default:
		return "", false
	}
}

// AllowedExtensions lists the upload extensions accepted per kind.
func (k FileKind) AllowedExtensions() []string {
	switch k {
	case FileKindSchedule:
		return []string{".xlsx", ".xlsm"}
	case FileKindSyllabus, FileKindTemplate:
		return []string{".docx"}
	default:
		return nil
	}
}

// UploadedFile indexes a file accepted by the upload endpoints.
type UploadedFile struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"file_id"`
	Kind         FileKind       `gorm:"column:kind;type:varchar(16);not null;index" json:"kind"`
	OriginalName string         `gorm:"column:original_name;not null" json:"filename"`
	StoredName   string         `gorm:"column:stored_name;not null" json:"-"`
	Path         string         `gorm:"column:path;not null" json:"-"`
	Size         int64          `gorm:"column:size;not null;default:0" json:"size"`
	SHA256       string         `gorm:"column:sha256" json:"sha256,omitempty"`
	Parsed       datatypes.JSON `gorm:"column:parsed" json:"parsed,omitempty"`
	CreatedAt    time.Time      `gorm:"index" json:"upload_time"`
	UpdatedAt    time.Time      `json:"-"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (UploadedFile) TableName() string { return "uploaded_file" }

func (f *UploadedFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
