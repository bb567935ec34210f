package inventory

import "fmt"

// RowNotFoundError is returned when an inventory row does not exist or is
// not visible to the acting user.
type RowNotFoundError struct {
	ID int
}

func (e *RowNotFoundError) Error() string {
	return fmt.Sprintf("inventory row %d not found", e.ID)
}

// DeckNotFoundError is returned when a deck does not exist or is not owned
// by the acting user.
type DeckNotFoundError struct {
	ID string
}

func (e *DeckNotFoundError) Error() string {
	return fmt.Sprintf("deck %s not found", e.ID)
}

// InsufficientQuantityError is returned when a move asks for more copies
// than the source row holds.
type InsufficientQuantityError struct {
	RowID int
	Have  int
	Want  int
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("inventory row %d holds %d copies, requested %d", e.RowID, e.Have, e.Want)
}

// ValidationError is returned for requests that are malformed regardless of
// database state.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NotPermittedError is returned when the acting user may not perform the
// operation on the target.
type NotPermittedError struct {
	Reason string
}

func (e *NotPermittedError) Error() string {
	return e.Reason
}
