// Package service implements the application's use cases on top of the
// domain repository ports.
package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"fundcrm/internal/domain"
)

// AuditService records and inspects the audit hash chain.
//
// Record is fail-closed: when the append fails, the error is logged at
// error severity and returned, and callers must fail the triggering
// action rather than proceed with an audit gap.
type AuditService struct {
	repo domain.AuditRepository
	log  *slog.Logger
}

func NewAuditService(repo domain.AuditRepository, log *slog.Logger) *AuditService {
	return &AuditService{repo: repo, log: log}
}

// Record appends one entry attributed to the context's authenticated
// user.
func (s *AuditService) Record(ctx context.Context, action, entityType string, entityID *int64, entityName *string, details map[string]any) error {
	actor, ok := domain.UserFromContext(ctx)
	if !ok {
		return domain.ErrUnauthorized("no authenticated user for audit entry")
	}
	return s.RecordAs(ctx, actor, action, entityType, entityID, entityName, details)
}

// RecordAs appends one entry attributed to an explicit actor. Login is
// the only caller that needs this: at that point the session is not yet
// in the context.
func (s *AuditService) RecordAs(ctx context.Context, actor domain.ContextUser, action, entityType string, entityID *int64, entityName *string, details map[string]any) error {
	serialized, err := domain.CanonicalDetails(details)
	if err != nil {
		return err
	}

	e := &domain.AuditEntry{
		ActorID:    actor.ID,
		ActorName:  actor.FullName,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		EntityName: entityName,
	}
	if serialized != "" {
		e.Details = &serialized
	}
	if ip, ok := domain.ClientIPFromContext(ctx); ok {
		e.IP = &ip
	}

	if _, err := s.repo.Append(ctx, e); err != nil {
		s.log.ErrorContext(ctx, "audit append failed",
			"action", action,
			"entity_type", entityType,
			"actor_id", actor.ID,
			"error", err)
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	return s.repo.List(ctx, filter)
}

// Verify walks the full chain and reports whether it is intact. A
// broken chain is a finding, not an error: the result carries the first
// diverging sequence ID.
func (s *AuditService) Verify(ctx context.Context) (domain.VerifyResult, error) {
	entries, err := s.repo.ListAll(ctx)
	if err != nil {
		return domain.VerifyResult{}, fmt.Errorf("load audit chain: %w", err)
	}
	res := domain.VerifyChain(entries)
	if !res.Valid {
		s.log.ErrorContext(ctx, "audit chain verification failed",
			"first_broken_sequence_id", *res.FirstBrokenSequenceID,
			"entries_checked", res.EntriesChecked)
	}
	return res, nil
}

// ExportCSV streams the full chain to w in ascending sequence order and
// records an EXPORT entry attributed to the requesting user. The export
// includes both hash columns so an external tool can re-verify it.
func (s *AuditService) ExportCSV(ctx context.Context, w io.Writer) error {
	entries, err := s.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load audit chain: %w", err)
	}

	cw := csv.NewWriter(w)
	header := []string{"sequence_id", "timestamp", "actor_id", "actor_name", "action",
		"entity_type", "entity_id", "entity_name", "details", "ip_address",
		"previous_hash", "entry_hash"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, e := range entries {
		rec := []string{
			strconv.FormatInt(e.SequenceID, 10),
			e.Timestamp,
			strconv.FormatInt(e.ActorID, 10),
			e.ActorName,
			e.Action,
			e.EntityType,
			optInt(e.EntityID),
			optStr(e.EntityName),
			optStr(e.Details),
			optStr(e.IP),
			optStr(e.PreviousHash),
			e.EntryHash,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	return s.Record(ctx, domain.ActionExport, domain.EntitySession, nil, nil,
		map[string]any{"export": "audit_log", "entries": len(entries)})
}

func optStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func optInt(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

// fieldChange records a before/after pair in an update's details map.
func fieldChange(details map[string]any, field string, from, to any) {
	details[field] = map[string]any{"from": from, "to": to}
}
