package causalnet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/LucasGeos/GKG/internal/models"
)

// ErrGraphIntegrity matches every *GraphIntegrityError.
var ErrGraphIntegrity = errors.New("graph integrity")

// GraphIntegrityError reports an edge whose endpoint is not among the
// supplied vertices.
type GraphIntegrityError struct {
	Category      models.EdgeCategory
	EdgeID        models.ID
	ParentID      models.ID
	ChildID       models.ID
	MissingParent bool
	MissingChild  bool
}

func (e *GraphIntegrityError) Error() string {
	var missing []string
	if e.MissingParent {
		missing = append(missing, fmt.Sprintf("parent %s", e.ParentID))
	}
	if e.MissingChild {
		missing = append(missing, fmt.Sprintf("child %s", e.ChildID))
	}
	return fmt.Sprintf("causalnet: %s edge %s (%s -> %s) references missing %s",
		e.Category, e.EdgeID, e.ParentID, e.ChildID, strings.Join(missing, " and "))
}

// Is makes errors.Is(err, ErrGraphIntegrity) true.
func (e *GraphIntegrityError) Is(target error) bool {
	return target == ErrGraphIntegrity
}
