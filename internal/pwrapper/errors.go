package pwrapper

import (
	"fmt"

	"github.com/pioneer-storage/pioneer/internal/pstorage"
	pioneererrors "github.com/pioneer-storage/pioneer/pkg/errors"
)

func notLeaderError(op string) error {
	return pioneererrors.NewError(pioneererrors.ErrCodeLeaseInvalid,
		fmt.Sprintf("%s: not leader for this replicated group", op)).WithOperation(op)
}

func wrongShardError(op string, key pstorage.StorageKey) error {
	return pioneererrors.NewError(pioneererrors.ErrCodeWrongShard,
		fmt.Sprintf("%s: %s does not belong to either shard", op, key)).WithOperation(op)
}
