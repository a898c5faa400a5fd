package uid

import (
	"github.com/bwmarrin/snowflake"
)

// Snowflake generates 63-bit time ordered ids. Ids produced by the same node
// sort by creation time, which the record store uses as a tie-breaker.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake builds a generator for the given node number (0..1023).
func NewSnowflake(node int64) (*Snowflake, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: n}, nil
}

// Generate returns a new id.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
