package materials

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/lessonplan-backend/internal/domain"
	"github.com/yungbote/lessonplan-backend/internal/platform/dbctx"
	"github.com/yungbote/lessonplan-backend/internal/platform/logger"
)

var ErrFileNotFound = errors.New("file not found")

type UploadedFileRepo interface {
	Create(dbc dbctx.Context, file *types.UploadedFile) (*types.UploadedFile, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.UploadedFile, error)
	// List returns files newest first; an empty kind lists every kind.
	List(dbc dbctx.Context, kind types.FileKind) ([]*types.UploadedFile, error)
	SaveParsed(dbc dbctx.Context, id uuid.UUID, parsed datatypes.JSON) error
	SoftDeleteByID(dbc dbctx.Context, id uuid.UUID) error
}

type uploadedFileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUploadedFileRepo(db *gorm.DB, baseLog *logger.Logger) UploadedFileRepo {
	repoLog := baseLog.With("repo", "UploadedFileRepo")
	return &uploadedFileRepo{db: db, log: repoLog}
}

func (r *uploadedFileRepo) Create(dbc dbctx.Context, file *types.UploadedFile) (*types.UploadedFile, error) {
	if err := dbc.DB(r.db).Create(file).Error; err != nil {
		return nil, err
	}
	return file, nil
}

func (r *uploadedFileRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.UploadedFile, error) {
	var out types.UploadedFile
	err := dbc.DB(r.db).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *uploadedFileRepo) List(dbc dbctx.Context, kind types.FileKind) ([]*types.UploadedFile, error) {
	q := dbc.DB(r.db).Order("created_at DESC")
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	var results []*types.UploadedFile
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *uploadedFileRepo) SaveParsed(dbc dbctx.Context, id uuid.UUID, parsed datatypes.JSON) error {
	res := dbc.DB(r.db).Model(&types.UploadedFile{}).Where("id = ?", id).Update("parsed", parsed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrFileNotFound
	}
	return nil
}

func (r *uploadedFileRepo) SoftDeleteByID(dbc dbctx.Context, id uuid.UUID) error {
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.UploadedFile{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrFileNotFound
	}
	return nil
}
