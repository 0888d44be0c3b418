package sync

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/livrex-com/livrexgo/internal/api"
	"github.com/livrex-com/livrexgo/internal/models"
)

// ProcessPendingChanges drains the pending-change queue against the
// remote API in enqueue-timestamp order. Entries for the same entity
// stop at that entity's first failure; entries for other entities
// keep flowing.
func (e *Engine) ProcessPendingChanges() *Result {
	result := &Result{Timestamp: time.Now()}

	pending := e.mirror.ListPending()
	if len(pending) == 0 {
		return result
	}

	log.Printf("🔄 Replaying %d pending changes...", len(pending))

	// temp id -> server id, filled as offline creates reconcile
	tempIDs := make(map[string]string)
	// entityType/entityID entries blocked behind a failure this pass
	blocked := make(map[string]bool)

	for i := range pending {
		pc := pending[i]
		key := pc.EntityType + "/" + pc.EntityID

		if blocked[key] {
			result.Skipped++
			continue
		}

		result.Processed++
		err := e.replay(&pc, tempIDs)

		// A 404 against a temporary id means the entity never
		// reached the remote system and nothing needs reconciling.
		if err != nil && api.IsNotFound(err) && models.IsTempID(pc.EntityID) {
			log.Printf("🧹 Dropping pending %s for never-synced %s", pc.Action, pc.EntityID)
			err = nil
		}

		if err == nil {
			e.mirror.DeletePending(pc.ID)
			result.Succeeded++
			continue
		}

		message := err.Error()
		pc.RetryCount++
		pc.Error = &message
		e.mirror.SavePending(&pc)
		blocked[key] = true

		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("%s %s %s: %v", pc.Action, pc.EntityType, pc.EntityID, err))
		log.Printf("⚠️ Pending %s for %s %s failed (retry %d): %v", pc.Action, pc.EntityType, pc.EntityID, pc.RetryCount, err)
	}

	result.Duration = time.Since(result.Timestamp)
	log.Printf("✅ Replay completed: %d ok, %d failed, %d skipped", result.Succeeded, result.Failed, result.Skipped)
	return result
}

func (e *Engine) replay(pc *models.PendingChange, tempIDs map[string]string) error {
	switch pc.Action {
	case models.PendingActionCreate:
		return e.replayCreate(pc, tempIDs)
	case models.PendingActionUpdate:
		return e.replayUpdate(pc, tempIDs)
	case models.PendingActionDelete:
		return e.replayDelete(pc, tempIDs)
	default:
		return fmt.Errorf("unknown pending action: %s", pc.Action)
	}
}

// replayCreate creates the queued entity remotely, first checking
// for a probable duplicate already present on the server (the same
// create may have landed before a crash cut the acknowledgment).
func (e *Engine) replayCreate(pc *models.PendingChange, tempIDs map[string]string) error {
	payload, err := decodePayload(pc)
	if err != nil {
		return err
	}

	entityType := EntityType(pc.EntityType)

	if entityType == EntityTypeCommandes {
		match, err := e.findRemoteDuplicate(payload)
		if err != nil {
			// Without the duplicate probe a retried create could
			// land twice; fail the replay and try again later.
			return fmt.Errorf("duplicate probe failed: %w", err)
		}
		if match != nil {
			serverID := stringID(match["id"])
			log.Printf("🔁 Create for %s matches existing remote commande %s, converting to update", pc.EntityID, serverID)
			updated, err := e.remote.Update(pc.EntityType, serverID, payload)
			if err != nil {
				return err
			}
			tempIDs[pc.EntityID] = serverID
			return e.mirror.ReplaceEntity(entityType, pc.EntityID, updated)
		}

		// A temporary-looking business number must not reach the
		// remote system; mint a fresh one.
		if numero, ok := payload["numero_commande"].(string); !ok || numero == "" || strings.HasPrefix(numero, models.TempIDPrefix) {
			payload["numero_commande"] = models.GenerateNumeroCommande()
		}
	}

	delete(payload, "id") // the server assigns the identifier

	created, err := e.remote.Create(pc.EntityType, payload)
	if err != nil {
		return err
	}

	serverID := stringID(created["id"])
	if serverID != "" {
		tempIDs[pc.EntityID] = serverID
	}
	return e.mirror.ReplaceEntity(entityType, pc.EntityID, created)
}

// replayUpdate applies a queued update. An update against a
// never-synced temporary id is converted into a create.
func (e *Engine) replayUpdate(pc *models.PendingChange, tempIDs map[string]string) error {
	targetID := pc.EntityID
	if models.IsTempID(targetID) {
		if serverID, ok := tempIDs[targetID]; ok {
			targetID = serverID
		} else {
			log.Printf("🔁 Update targets never-synced %s, converting to create", targetID)
			return e.replayCreate(pc, tempIDs)
		}
	}

	payload, err := decodePayload(pc)
	if err != nil {
		return err
	}
	delete(payload, "id")

	// Authoritative fields come from the last known local copy, not
	// from possibly stale queued data.
	if EntityType(pc.EntityType) == EntityTypeCommandes {
		if local := e.mirror.GetCommande(targetID); local != nil && local.NumeroCommande != "" {
			payload["numero_commande"] = local.NumeroCommande
		}
	}

	updated, err := e.remote.Update(pc.EntityType, targetID, payload)
	if err != nil {
		return err
	}

	e.mirror.PutEntity(EntityType(pc.EntityType), updated)
	return nil
}

// replayDelete removes the entity remotely. A delete targeting a
// temporary id that never synced is purely local.
func (e *Engine) replayDelete(pc *models.PendingChange, tempIDs map[string]string) error {
	targetID := pc.EntityID
	if models.IsTempID(targetID) {
		if serverID, ok := tempIDs[targetID]; ok {
			targetID = serverID
		} else {
			e.mirror.DeleteEntity(EntityType(pc.EntityType), pc.EntityID)
			return nil
		}
	}

	err := e.remote.Delete(pc.EntityType, targetID)
	if err != nil && !api.IsNotFound(err) {
		return err
	}

	e.mirror.DeleteEntity(EntityType(pc.EntityType), pc.EntityID)
	if targetID != pc.EntityID {
		e.mirror.DeleteEntity(EntityType(pc.EntityType), targetID)
	}
	return nil
}

// findRemoteDuplicate searches remote commandes for a probable
// duplicate of the queued payload, scoped to the payload's delivery
// date to bound the search.
func (e *Engine) findRemoteDuplicate(payload map[string]interface{}) (map[string]interface{}, error) {
	query := url.Values{}
	if date, ok := payload["date_livraison"].(string); ok && date != "" {
		query.Set("date_livraison", date)
	}

	existing, err := e.remote.List(string(EntityTypeCommandes), query)
	if err != nil {
		return nil, err
	}
	return e.dupes.FindMatch(existing, payload), nil
}

func decodePayload(pc *models.PendingChange) (map[string]interface{}, error) {
	payload := make(map[string]interface{})
	if len(pc.Data) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(pc.Data, &payload); err != nil {
		return nil, fmt.Errorf("corrupt pending payload: %w", err)
	}
	return payload, nil
}

func stringID(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
