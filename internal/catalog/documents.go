package catalog

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

// DocumentType enumerates product document categories. Values are stored
// as-is and must not be renamed.
type DocumentType string

const (
	DocumentRegistration         DocumentType = "registration"
	DocumentWarranty             DocumentType = "warranty"
	DocumentAppraisal            DocumentType = "appraisal"
	DocumentService              DocumentType = "service"
	DocumentPhoto                DocumentType = "photo"
	DocumentOther                DocumentType = "other"
	DocumentConsignmentAgreement DocumentType = "consignment_agreement"
	DocumentCertificateCard      DocumentType = "certificate_card"
)

// AttachmentKind distinguishes product documents from expense receipts,
// which carry different size and extension limits.
type AttachmentKind string

const (
	AttachmentDocument AttachmentKind = "document"
	AttachmentReceipt  AttachmentKind = "receipt"
)

const (
	maxDocumentBytes = 20 << 20
	maxReceiptBytes  = 10 << 20
	maxFilesPerBatch = 5
)

var documentExtensions = map[string]bool{
	".pdf": true, ".jpg": true, ".jpeg": true, ".png": true, ".docx": true, ".doc": true,
}

var receiptExtensions = map[string]bool{
	".pdf": true, ".jpg": true, ".png": true,
}

var validDocumentTypes = map[DocumentType]bool{
	DocumentRegistration: true, DocumentWarranty: true, DocumentAppraisal: true,
	DocumentService: true, DocumentPhoto: true, DocumentOther: true,
	DocumentConsignmentAgreement: true, DocumentCertificateCard: true,
}

// Document is attachment metadata; the file itself lives in external object
// storage and only its key is recorded here.
type Document struct {
	ID         int64        `json:"id"`
	ProductID  int64        `json:"product_id"`
	Type       DocumentType `json:"type"`
	Filename   string       `json:"filename"`
	SizeBytes  int64        `json:"size_bytes"`
	StorageKey string       `json:"storage_key"`
	UploadedAt time.Time    `json:"uploaded_at"`
}

// FileMeta describes one file in an attach request, validated before the
// upload to object storage is attempted.
type FileMeta struct {
	Filename  string       `json:"filename" validate:"required,max=255"`
	SizeBytes int64        `json:"size_bytes" validate:"required,gt=0"`
	Type      DocumentType `json:"type" validate:"required"`
}

// AttachRequest asks to record up to five files against a product.
type AttachRequest struct {
	Kind  AttachmentKind `json:"kind" validate:"required"`
	Files []FileMeta     `json:"files" validate:"required,min=1,dive"`
}

var (
	ErrTooManyFiles    = errors.New("at most 5 files per attach operation")
	ErrFileTooLarge    = errors.New("file exceeds the size limit")
	ErrBadExtension    = errors.New("file type not allowed")
	ErrBadDocumentType = errors.New("unknown document type")
)

// ValidateAttach enforces the client-side upload constraints: documents up
// to 20MB (pdf/jpg/jpeg/png/docx/doc), receipts up to 10MB (pdf/jpg/png),
// at most five files per operation.
func ValidateAttach(req AttachRequest) error {
	if len(req.Files) > maxFilesPerBatch {
		return ErrTooManyFiles
	}
	maxBytes := int64(maxDocumentBytes)
	allowed := documentExtensions
	if req.Kind == AttachmentReceipt {
		maxBytes = maxReceiptBytes
		allowed = receiptExtensions
	}
	for _, f := range req.Files {
		if f.SizeBytes > maxBytes {
			return fmt.Errorf("%w: %s (%d bytes)", ErrFileTooLarge, f.Filename, f.SizeBytes)
		}
		ext := strings.ToLower(path.Ext(f.Filename))
		if !allowed[ext] {
			return fmt.Errorf("%w: %s", ErrBadExtension, f.Filename)
		}
		if !validDocumentTypes[f.Type] {
			return fmt.Errorf("%w: %s", ErrBadDocumentType, f.Type)
		}
	}
	return nil
}
