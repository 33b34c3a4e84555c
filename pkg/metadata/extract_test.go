package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name           string
		content        string
		wantNil        bool
		wantPrefix     int
		wantText       string
		wantTerminated bool
	}{
		{
			name: "shell comment block at indent 2",
			content: strings.Join([]string{
				"#!/bin/sh",
				"# :dotsctl:",
				"#   destdir: ~/bin/",
				"#   dpkg:",
				"#     - curl",
				"# ...",
				"echo hello",
			}, "\n"),
			wantPrefix:     2,
			wantText:       "  destdir: ~/bin/\n  dpkg:\n    - curl",
			wantTerminated: true,
		},
		{
			name: "marker at column zero",
			content: strings.Join([]string{
				":dotsctl:",
				"dest: ~/.vimrc",
				"...",
			}, "\n"),
			wantPrefix:     0,
			wantText:       "dest: ~/.vimrc",
			wantTerminated: true,
		},
		{
			name: "vim comment prefix",
			content: strings.Join([]string{
				`" :dotsctl:`,
				`"   symlink:`,
				`"     ~/.vimrc: vimrc`,
				`" ...`,
			}, "\n"),
			wantPrefix:     2,
			wantText:       "  symlink:\n    ~/.vimrc: vimrc",
			wantTerminated: true,
		},
		{
			name:    "no marker",
			content: "#!/bin/sh\necho no metadata here\n",
			wantNil: true,
		},
		{
			name: "marker beyond scan window",
			content: strings.Repeat("filler line\n", DefaultScanWindow) +
				"# :dotsctl:\n#   dest: ~/x\n# ...\n",
			wantNil: true,
		},
		{
			name: "unterminated block keeps accumulated lines",
			content: strings.Join([]string{
				"# :dotsctl:",
				"#   destdir: ~/bin/",
			}, "\n"),
			wantPrefix:     2,
			wantText:       "  destdir: ~/bin/",
			wantTerminated: false,
		},
		{
			name: "short lines inside block become blank",
			content: strings.Join([]string{
				"# :dotsctl:",
				"#",
				"#   dest: ~/x",
				"# ...",
			}, "\n"),
			wantPrefix:     2,
			wantText:       "\n  dest: ~/x",
			wantTerminated: true,
		},
		{
			name:    "binary content skipped",
			content: "# :dotsctl:\n\x00\x01\x02\n# ...",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := Extract([]byte(tt.content), 0)
			if tt.wantNil {
				assert.Nil(t, block)
				return
			}
			require.NotNil(t, block)
			assert.Equal(t, tt.wantPrefix, block.Prefix)
			assert.Equal(t, tt.wantText, block.Text())
			assert.Equal(t, tt.wantTerminated, block.Terminated)
		})
	}
}

// Indenting a metadata document under a comment prefix and extracting it
// again must reproduce the original text exactly.
func TestExtract_RoundTrip(t *testing.T) {
	original := strings.Join([]string{
		"mkdir:",
		"  - ~/bin",
		"dest: ~/bin/foo",
		"strip_extension: false",
	}, "\n")

	var b strings.Builder
	b.WriteString("# :dotsctl:\n")
	for _, line := range strings.Split(original, "\n") {
		b.WriteString("# " + line + "\n")
	}
	b.WriteString("# ...\n")

	block := Extract([]byte(b.String()), 0)
	require.NotNil(t, block)
	assert.True(t, block.Terminated)
	assert.Equal(t, original, block.Text())
}

func TestExtract_CustomWindow(t *testing.T) {
	content := "line one\n# :dotsctl:\n#   dest: ~/x\n# ...\n"

	assert.NotNil(t, Extract([]byte(content), 2))
	assert.Nil(t, Extract([]byte(content), 1))
}

func TestExtract_MarkerLineContentIgnored(t *testing.T) {
	content := strings.Join([]string{
		"# :dotsctl: trailing words are not part of the block",
		"#   dest: ~/x",
		"# ...",
	}, "\n")

	block := Extract([]byte(content), 0)
	require.NotNil(t, block)
	assert.Equal(t, "  dest: ~/x", block.Text())
}
