package http

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

func loadSchemas() (map[string]*gojsonschema.Schema, error) {
	entries, err := fs.ReadDir(schemaFS, "schemas")
	if err != nil {
		return nil, err
	}
	out := make(map[string]*gojsonschema.Schema, len(entries))
	for _, e := range entries {
		b, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, err
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(b))
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", e.Name(), err)
		}
		out[strings.TrimSuffix(e.Name(), ".json")] = schema
	}
	return out, nil
}

// bind validates the request body against the named schema and decodes it
// into dst. On failure it writes the response and returns false. An empty
// body is treated as {}.
func (s *Server) bind(c *gin.Context, schema string, dst any) bool {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatusJSON(400, gin.H{"detail": "invalid_body"})
		return false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	res, err := s.schemas[schema].Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		c.AbortWithStatusJSON(400, gin.H{"detail": "invalid_json"})
		return false
	}
	if !res.Valid() {
		d := []string{}
		for _, e := range res.Errors() {
			d = append(d, e.String())
		}
		c.AbortWithStatusJSON(422, gin.H{"detail": "schema_invalid", "errors": d})
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		c.AbortWithStatusJSON(422, gin.H{"detail": "schema_invalid", "errors": []string{err.Error()}})
		return false
	}
	return true
}
