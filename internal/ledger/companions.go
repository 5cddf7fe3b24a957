package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mmynk/ridesplit/internal/models"
	"github.com/mmynk/ridesplit/internal/storage"
)

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "required")
	}
	return name, nil
}

// checkNameFree fails with a ConflictError if another companion (other than
// exceptID) already uses name, compared case-insensitively.
func (e *Engine) checkNameFree(ctx context.Context, op, name, exceptID string) error {
	companions, err := e.store.ListCompanions(ctx)
	if err != nil {
		return storageFailure(op, err)
	}
	for _, c := range companions {
		if c.ID != exceptID && strings.EqualFold(c.Name, name) {
			return &ConflictError{Field: "name", Value: name}
		}
	}
	return nil
}

// AddCompanion creates a companion whose id is derived from name.
func (e *Engine) AddCompanion(ctx context.Context, name string) (*models.Companion, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.addCompanionLocked(ctx, name)
}

func (e *Engine) addCompanionLocked(ctx context.Context, name string) (*models.Companion, error) {
	const op = "add companion"

	if err := e.checkNameFree(ctx, op, name, ""); err != nil {
		return nil, err
	}

	c := &models.Companion{ID: DeriveCompanionID(name), Name: name, CreatedAt: e.now().Unix()}
	if err := e.store.InsertCompanion(ctx, c); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, &ConflictError{Field: "id", Value: c.ID}
		}
		return nil, storageFailure(op, err)
	}

	slog.Info("Companion added", "companion_id", c.ID, "name", c.Name)
	return c, nil
}

// RenameCompanion changes the display name. The id stays the same.
func (e *Engine) RenameCompanion(ctx context.Context, companionID, newName string) (*models.Companion, error) {
	const op = "rename companion"

	newName, err := normalizeName(newName)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	c, err := e.requireCompanion(ctx, op, companionID)
	if err != nil {
		return nil, err
	}
	if err := e.checkNameFree(ctx, op, newName, companionID); err != nil {
		return nil, err
	}
	if err := e.store.UpdateCompanionName(ctx, companionID, newName); err != nil {
		return nil, mapStoreErr(op, "companion", companionID, err)
	}

	slog.Info("Companion renamed", "companion_id", companionID, "from", c.Name, "to", newName)
	c.Name = newName
	return c, nil
}

// DeleteCompanion removes a companion with all of its trips and payments.
// The store deletes dependents before the companion inside one transaction.
func (e *Engine) DeleteCompanion(ctx context.Context, companionID string) error {
	const op = "delete companion"

	if companionID == "" {
		return invalid("companionId", "required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.DeleteCompanion(ctx, companionID); err != nil {
		return mapStoreErr(op, "companion", companionID, err)
	}

	slog.Info("Companion deleted", "companion_id", companionID)
	return nil
}

// Seed adds the given companions when the directory is empty. It is an explicit
// bootstrap step and does nothing once any companion exists.
func (e *Engine) Seed(ctx context.Context, names []string) ([]*models.Companion, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	existing, err := e.store.ListCompanions(ctx)
	if err != nil {
		return nil, storageFailure("seed", err)
	}
	if len(existing) > 0 {
		return nil, nil
	}

	var added []*models.Companion
	for _, raw := range names {
		name, err := normalizeName(raw)
		if err != nil {
			continue
		}
		c, err := e.addCompanionLocked(ctx, name)
		if IsConflict(err) {
			slog.Warn("Skipping duplicate seed companion", "name", name)
			continue
		}
		if err != nil {
			return added, err
		}
		added = append(added, c)
	}

	slog.Info("Seeded companions", "count", len(added))
	return added, nil
}
