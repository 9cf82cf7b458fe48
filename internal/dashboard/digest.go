package dashboard

import (
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/autosdlc/autosdlc/pkg/autosdlc/types"
)

// Digest returns the blake3 hash of a project state's JSON encoding. Map
// keys are encoded sorted, so equal states hash equally.
func Digest(p *types.ProjectState) (string, error) {
	if p == nil {
		return "", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode project state: %w", err)
	}

	hasher := blake3.New()
	if _, err := hasher.Write(data); err != nil {
		return "", fmt.Errorf("hash project state: %w", err)
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
