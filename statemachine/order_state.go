package statemachine

import (
	"errors"
	"strings"

	"table-order-api/models"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor models.UserRole    `json:"actor"`
}

// validTransitions is the authoritative state machine definition.
// Orders are either paid up front at the register or served first and paid on the way out.
var validTransitions = []Transition{
	{From: models.StatusUnpaid, To: models.StatusPaid, Actor: models.RoleStaff},
	{From: models.StatusUnpaid, To: models.StatusPaid, Actor: models.RoleAdmin},
	{From: models.StatusUnpaid, To: models.StatusServed, Actor: models.RoleStaff},
	{From: models.StatusUnpaid, To: models.StatusServed, Actor: models.RoleAdmin},
	{From: models.StatusPaid, To: models.StatusServed, Actor: models.RoleStaff},
	{From: models.StatusPaid, To: models.StatusServed, Actor: models.RoleAdmin},
	{From: models.StatusServed, To: models.StatusPaid, Actor: models.RoleStaff},
	{From: models.StatusServed, To: models.StatusPaid, Actor: models.RoleAdmin},
}

// transitionKey is used to look up valid transitions quickly
type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor models.UserRole
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// IsKnown reports whether status is part of the lifecycle
func IsKnown(status models.OrderStatus) bool {
	switch status {
	case models.StatusUnpaid, models.StatusPaid, models.StatusServed:
		return true
	}
	return false
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.OrderStatus, actor models.UserRole) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return errors.New(
		"invalid transition: " + string(from) + " → " + string(to) +
			" is not allowed for actor '" + string(actor) + "'. " +
			"Valid transitions from " + string(from) + " are: " + describeValidFrom(from),
	)
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
