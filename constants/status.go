package constants

// DocumentStatus is the canonical status for rows in source_documents.
type DocumentStatus string

// Stable values (store these exact strings in DB).
const (
	DocumentPending   DocumentStatus = "PENDING"   // uploaded, extraction not finished yet
	DocumentProcessed DocumentStatus = "PROCESSED" // extraction finished, possibly with zero records
	DocumentFailed    DocumentStatus = "FAILED"    // document-level extraction failure
)
