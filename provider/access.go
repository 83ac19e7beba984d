package provider

import (
	"github.com/google/uuid"
	"github.com/tnqbao/gau-drive-service/entity"
)

type Operation string

const (
	// OpRead covers download, list visibility and roster viewing.
	OpRead Operation = "read"
	// OpWrite covers delete and sharing updates. Sharing membership never
	// grants write, not even over the object's own access list.
	OpWrite Operation = "write"
)

// Authorize is a pure decision over catalog state: owner and shared members
// may read, only the owner may write. An ownerless object (owner account
// removed) keeps its read grants but can no longer be mutated by anyone.
func Authorize(principal uuid.UUID, object *entity.Object, op Operation) bool {
	if object == nil {
		return false
	}
	switch op {
	case OpRead:
		return object.IsOwner(principal) || object.IsSharedWith(principal)
	case OpWrite:
		return object.IsOwner(principal)
	default:
		return false
	}
}
