// Package queue defines the audit payload exchanged over the message broker
// and the consumer that records it.
package queue

import (
    "time"

    "github.com/google/uuid"
)

// AuditQueueName is the durable queue carrying console mutations.
const AuditQueueName = "admin.audit"

// Audit actions.
const (
    ActionCreate     = "create"
    ActionUpdate     = "update"
    ActionDelete     = "delete"
    ActionActivate   = "activate"
    ActionDeactivate = "deactivate"
    ActionUpload     = "upload"
    ActionLogin      = "login"
    ActionLogout     = "logout"
)

// AuditEvent is published after every successful mutation made through the
// console.  It carries enough for a log line without calling the upstream.
type AuditEvent struct {
    ID       string `json:"id"`
    Action   string `json:"action"`
    Entity   string `json:"entity"`
    EntityID string `json:"entity_id,omitempty"`
    ActorID  string `json:"actor_id,omitempty"`
    Actor    string `json:"actor,omitempty"`
    At       string `json:"at"`
}

// NewAuditEvent stamps a fresh id and the current UTC time.
func NewAuditEvent(action, entity, entityID, actorID, actor string) AuditEvent {
    return AuditEvent{
        ID:       uuid.NewString(),
        Action:   action,
        Entity:   entity,
        EntityID: entityID,
        ActorID:  actorID,
        Actor:    actor,
        At:       time.Now().UTC().Format(time.RFC3339),
    }
}
