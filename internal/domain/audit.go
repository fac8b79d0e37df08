package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Audit actions. A closed set — audit rows never carry free text here.
const (
	ActionCreate              = "CREATE"
	ActionRead                = "READ"
	ActionUpdate              = "UPDATE"
	ActionDelete              = "DELETE"
	ActionLogin               = "LOGIN"
	ActionLogout              = "LOGOUT"
	ActionExport              = "EXPORT"
	ActionLockInteraction     = "LOCK_INTERACTION"
	ActionRoleChange          = "ROLE_CHANGE"
	ActionHandoverGenerate    = "HANDOVER_GENERATE"
	ActionHandoverFinalize    = "HANDOVER_FINALIZE"
	ActionHandoverAcknowledge = "HANDOVER_ACKNOWLEDGE"
)

// Audit entity types.
const (
	EntityClient          = "client"
	EntityClientContact   = "client_contact"
	EntityInteraction     = "interaction"
	EntityAttachment      = "attachment"
	EntityFundProduct     = "fund_product"
	EntityClientProduct   = "client_product"
	EntityHandoverPackage = "handover_package"
	EntityUser            = "user"
	EntitySession         = "session"
	EntityBusinessCard    = "business_card"
)

// GenesisHash is the sentinel that stands in for the previous hash when
// hashing the first entry of the chain. The stored previous_hash column
// for that entry is NULL; the sentinel only ever appears in hash input.
const GenesisHash = "genesis"

// AuditTimestampFormat is the fixed wall-clock serialization used in
// audit rows. The stored string participates in the entry hash, so the
// format can never change without breaking verification of old chains.
const AuditTimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// AuditEntry is one immutable record of a tracked action. Entries form
// a hash chain: EntryHash covers the entry's own fields plus the
// previous entry's EntryHash, so any retroactive edit is detectable.
type AuditEntry struct {
	SequenceID   int64
	Timestamp    string // AuditTimestampFormat, UTC
	ActorID      int64
	ActorName    string
	Action       string
	EntityType   string
	EntityID     *int64
	EntityName   *string
	Details      *string // canonical JSON, see CanonicalDetails
	IP           *string
	PreviousHash *string // nil for the first entry
	EntryHash    string
}

// NewAuditTimestamp returns the current time serialized for audit rows.
func NewAuditTimestamp(now time.Time) string {
	return now.UTC().Format(AuditTimestampFormat)
}

// CanonicalDetails serializes a details payload to its canonical form:
// JSON with object keys in sorted order at every nesting level, which
// is what encoding/json produces for maps. The canonical string is
// stored verbatim and hashed, so verification never re-serializes.
func CanonicalDetails(details map[string]any) (string, error) {
	if details == nil {
		return "", nil
	}
	b, err := json.Marshal(details)
	if err != nil {
		return "", fmt.Errorf("serialize audit details: %w", err)
	}
	return string(b), nil
}

// HashInput builds the fixed-order, pipe-delimited input the entry hash
// is computed over:
//
//	timestamp|actor_id|action|entity_type|entity_id|details|previous_hash
//
// Nil entity ID and details contribute empty strings; a nil previous
// hash contributes the genesis sentinel.
func (e *AuditEntry) HashInput() string {
	entityID := ""
	if e.EntityID != nil {
		entityID = strconv.FormatInt(*e.EntityID, 10)
	}
	details := ""
	if e.Details != nil {
		details = *e.Details
	}
	prev := GenesisHash
	if e.PreviousHash != nil {
		prev = *e.PreviousHash
	}
	return e.Timestamp + "|" +
		strconv.FormatInt(e.ActorID, 10) + "|" +
		e.Action + "|" +
		e.EntityType + "|" +
		entityID + "|" +
		details + "|" +
		prev
}

// ComputeEntryHash returns the SHA-256 hex digest of the entry's hash
// input.
func (e *AuditEntry) ComputeEntryHash() string {
	sum := sha256.Sum256([]byte(e.HashInput()))
	return hex.EncodeToString(sum[:])
}

// VerifyResult is the outcome of a chain verification pass.
type VerifyResult struct {
	Valid                 bool
	FirstBrokenSequenceID *int64
	EntriesChecked        int64
}

// VerifyChain walks entries in the given order (callers supply
// ascending sequence_id order) and recomputes every hash against the
// expected previous link. It reports the first diverging sequence ID
// and stops there. An empty chain is valid.
//
// A fork — two entries claiming the same predecessor — surfaces here as
// a previous-hash mismatch on the second claimant.
func VerifyChain(entries []AuditEntry) VerifyResult {
	var expectedPrev *string
	for i := range entries {
		e := &entries[i]

		linked := AuditEntry{
			Timestamp:    e.Timestamp,
			ActorID:      e.ActorID,
			Action:       e.Action,
			EntityType:   e.EntityType,
			EntityID:     e.EntityID,
			Details:      e.Details,
			PreviousHash: expectedPrev,
		}

		if !prevMatches(e.PreviousHash, expectedPrev) || linked.ComputeEntryHash() != e.EntryHash {
			seq := e.SequenceID
			return VerifyResult{
				Valid:                 false,
				FirstBrokenSequenceID: &seq,
				EntriesChecked:        int64(i + 1),
			}
		}

		hash := e.EntryHash
		expectedPrev = &hash
	}
	return VerifyResult{Valid: true, EntriesChecked: int64(len(entries))}
}

func prevMatches(stored, expected *string) bool {
	if stored == nil || expected == nil {
		return stored == nil && expected == nil
	}
	return *stored == *expected
}

// AuditFilter narrows audit list queries.
type AuditFilter struct {
	ActorID    *int64
	Action     *string
	EntityType *string
	EntityID   *int64
	From       *string // inclusive timestamp lower bound
	To         *string // inclusive timestamp upper bound
	Page       PageRequest
}
