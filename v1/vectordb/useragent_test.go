package vectordb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserAgent(t *testing.T) {
	cases := map[string]string{
		"":                   "pinecone-client-go",
		"my_app":             "pinecone-client-go; source_tag=my_app",
		"  My   Search App ": "pinecone-client-go; source_tag=my_search_app",
		"team:rag-v2!":       "pinecone-client-go; source_tag=team:ragv2",
		"ÜNICODE tag":        "pinecone-client-go; source_tag=nicode_tag",
		"!!!":                "pinecone-client-go",
	}
	for in, want := range cases {
		assert.Equal(t, want, UserAgent(in), "source tag %q", in)
	}
}
