package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateAttachAcceptsDocumentBatch(t *testing.T) {
	req := AttachRequest{
		Kind: AttachmentDocument,
		Files: []FileMeta{
			{Filename: "cert.pdf", SizeBytes: 5 << 20, Type: DocumentCertificateCard},
			{Filename: "photo.JPG", SizeBytes: 1 << 20, Type: DocumentPhoto},
			{Filename: "warranty.docx", SizeBytes: 100, Type: DocumentWarranty},
		},
	}
	require.NoError(t, ValidateAttach(req))
}

func TestValidateAttachRejectsSixthFile(t *testing.T) {
	files := make([]FileMeta, 6)
	for i := range files {
		files[i] = FileMeta{Filename: "a.pdf", SizeBytes: 1, Type: DocumentOther}
	}
	err := ValidateAttach(AttachRequest{Kind: AttachmentDocument, Files: files})
	require.ErrorIs(t, err, ErrTooManyFiles)
}

func TestValidateAttachDocumentSizeLimit(t *testing.T) {
	err := ValidateAttach(AttachRequest{
		Kind:  AttachmentDocument,
		Files: []FileMeta{{Filename: "big.pdf", SizeBytes: (20 << 20) + 1, Type: DocumentOther}},
	})
	require.ErrorIs(t, err, ErrFileTooLarge)
}

func TestValidateAttachReceiptRules(t *testing.T) {
	// Receipts cap at 10MB and do not allow docx.
	err := ValidateAttach(AttachRequest{
		Kind:  AttachmentReceipt,
		Files: []FileMeta{{Filename: "receipt.pdf", SizeBytes: (10 << 20) + 1, Type: DocumentOther}},
	})
	require.ErrorIs(t, err, ErrFileTooLarge)

	err = ValidateAttach(AttachRequest{
		Kind:  AttachmentReceipt,
		Files: []FileMeta{{Filename: "receipt.docx", SizeBytes: 100, Type: DocumentOther}},
	})
	require.ErrorIs(t, err, ErrBadExtension)

	err = ValidateAttach(AttachRequest{
		Kind:  AttachmentReceipt,
		Files: []FileMeta{{Filename: "receipt.jpeg", SizeBytes: 100, Type: DocumentOther}},
	})
	require.ErrorIs(t, err, ErrBadExtension, "jpeg is document-only; receipts allow jpg")
}

func TestValidateAttachUnknownDocumentType(t *testing.T) {
	err := ValidateAttach(AttachRequest{
		Kind:  AttachmentDocument,
		Files: []FileMeta{{Filename: "x.pdf", SizeBytes: 1, Type: DocumentType("invoice")}},
	})
	require.ErrorIs(t, err, ErrBadDocumentType)
}
