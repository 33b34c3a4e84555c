package metadata

import (
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/dotsctl/pkg/errors"
	"github.com/arthur-debert/dotsctl/pkg/types"
)

// ParseDirective parses a de-indented metadata block into an install
// directive. Unknown keys are ignored so metadata authored for later
// versions still installs.
func ParseDirective(block string) (*types.Directive, error) {
	var d types.Directive
	if err := yaml.Unmarshal([]byte(block), &d); err != nil {
		return nil, errors.Wrap(err, errors.ErrMetadataParse, "malformed metadata block")
	}
	return &d, nil
}

// ExtractDirective runs extraction and parsing in one step. A nil, nil
// return means the file carries no metadata.
func ExtractDirective(content []byte, window int) (*types.Directive, error) {
	block := Extract(content, window)
	if block == nil {
		return nil, nil
	}
	return ParseDirective(block.Text())
}
