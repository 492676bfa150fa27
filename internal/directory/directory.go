// Package directory keeps participant profiles and the shared list of known
// users that clients pick conversation partners from.
package directory

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/docstore"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/identity"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/observability"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/schema"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/storage"
)

type Directory struct {
	store *storage.Gateway
	log   *zap.Logger
}

func New(store *storage.Gateway, log *zap.Logger) *Directory {
	return &Directory{store: store, log: log}
}

// Register stores the participant's profile and adds them to the user list.
// Registering again updates the profile and the listed name.
func (d *Directory) Register(ctx context.Context, p identity.Participant, profile domain.Profile) error {
	if p.IsZero() {
		return &domain.IdentityError{Reason: "participant id is empty"}
	}
	if strings.TrimSpace(profile.FirstName) == "" {
		return domain.ErrInvalidInput
	}

	value, err := schema.EncodeProfile(profile)
	if err != nil {
		return err
	}
	if err := d.store.Put(ctx, schema.ProfilePath(p.ID), value); err != nil {
		return err
	}

	name := profile.DisplayName()
	err = d.store.Mutate(ctx, schema.UsersPath, func(doc docstore.Document) (json.RawMessage, error) {
		list, report := schema.DecodeDirectory(doc.Value)
		d.noteSkipped(report)

		unchanged := false
		found := list.Update(
			func(e domain.DirectoryEntry) bool { return identity.Normalize(e.Email) == p.ID },
			func(e *domain.DirectoryEntry) {
				if e.Name == name {
					unchanged = true
					return
				}
				e.Name = name
			},
		)
		if found && unchanged {
			return nil, storage.ErrNoChange
		}
		if !found {
			list.Append(domain.DirectoryEntry{Name: name, Email: p.Email})
		}
		return list.Encode()
	})
	if err != nil {
		return err
	}

	d.log.Info("participant registered", zap.String("participant_id", p.ID))
	return nil
}

func (d *Directory) List(ctx context.Context) ([]domain.DirectoryEntry, domain.DecodeReport, error) {
	doc, err := d.store.Read(ctx, schema.UsersPath)
	if err != nil {
		return nil, domain.DecodeReport{}, err
	}
	list, report := schema.DecodeDirectory(doc.Value)
	d.noteSkipped(report)
	return list.Values(), report, nil
}

// Exists reports whether a profile is stored for email.
func (d *Directory) Exists(ctx context.Context, email string) (bool, error) {
	doc, err := d.store.Read(ctx, schema.ProfilePath(identity.Normalize(email)))
	if err != nil {
		return false, err
	}
	return doc.Exists(), nil
}

func (d *Directory) Profile(ctx context.Context, email string) (domain.Profile, error) {
	doc, err := d.store.Read(ctx, schema.ProfilePath(identity.Normalize(email)))
	if err != nil {
		return domain.Profile{}, err
	}
	if !doc.Exists() {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return schema.DecodeProfile(doc.Value)
}

// DisplayName is the "First Last" name of the profile stored for email.
func (d *Directory) DisplayName(ctx context.Context, email string) (string, error) {
	p, err := d.Profile(ctx, email)
	if err != nil {
		return "", err
	}
	return p.DisplayName(), nil
}

func (d *Directory) noteSkipped(report domain.DecodeReport) {
	if len(report.Skipped) == 0 {
		return
	}
	observability.DecodeSkippedTotal.WithLabelValues(schema.RecordUser).Add(float64(len(report.Skipped)))
	d.log.Warn("skipped malformed user records", zap.Int("count", len(report.Skipped)))
}
