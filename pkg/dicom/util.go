package dicom

import (
	"math/big"

	"github.com/google/uuid"
)

// UUIDRoot is the DICOM root for UUID-derived UIDs (PS3.5 B.2)
const UUIDRoot = "2.25."

// ImplementationVersionName identifies this writer in the File Meta group
const ImplementationVersionName = "IMG2PACS_1"

// ImplementationClassUID is stable across builds: a name-based UUID under the OID namespace
var ImplementationClassUID = UIDFromUUID(uuid.NewSHA1(uuid.NameSpaceOID, []byte("github.com/jpfielding/img2pacs")))

// NewUID generates a globally unique DICOM UID from a random UUID.
// Format: 2.25.<uuid as unsigned decimal>, at most 44 characters.
func NewUID() string {
	return UIDFromUUID(uuid.New())
}

// UIDFromUUID renders a UUID under the 2.25 root
func UIDFromUUID(u uuid.UUID) string {
	return UUIDRoot + new(big.Int).SetBytes(u[:]).String()
}
