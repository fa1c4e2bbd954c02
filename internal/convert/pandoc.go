// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/pagecraft/internal/container"
)

const imagePandoc = "pandoc/core:latest"

var pandocArgs = []string{"--from", "docx", "--to", "html"}

// PandocConverter converts .docx files by piping them through the pandoc
// container image. It depends on a container.Runtime (docker or podman)
// injected at construction time.
type PandocConverter struct {
	runtime container.Runtime
}

// NewPandocConverter creates a converter that uses the given container
// runtime to run the pandoc image. It verifies that the image exists
// locally before returning.
func NewPandocConverter(rt container.Runtime) (*PandocConverter, error) {
	if err := rt.ImageExists(imagePandoc); err != nil {
		return nil, fmt.Errorf("pandoc image not available in %s: %w", rt.Name(), err)
	}
	return &PandocConverter{runtime: rt}, nil
}

// ToHTML pipes data through pandoc. Lines pandoc writes to stderr become
// the result's messages.
func (p *PandocConverter) ToHTML(ctx context.Context, data []byte) (HTMLResult, error) {
	var out, diag bytes.Buffer
	if err := p.runtime.Run(ctx, imagePandoc, pandocArgs, bytes.NewReader(data), &out, &diag); err != nil {
		return HTMLResult{}, fmt.Errorf("converting with pandoc: %w", err)
	}

	var msgs []string
	for _, line := range strings.Split(diag.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			msgs = append(msgs, line)
		}
	}
	return HTMLResult{HTML: out.String(), Messages: msgs}, nil
}
