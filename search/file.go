package search

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teranos/recipeviz/errors"
	"github.com/teranos/recipeviz/graph"
	grapherror "github.com/teranos/recipeviz/graph/error"
)

// FileSource serves a dataset stored on disk. Files ending in .yaml or .yml
// are decoded as YAML, everything else as JSON. The request is ignored.
type FileSource struct {
	Path string
}

// Fetch reads and decodes the file
func (f FileSource) Fetch(ctx context.Context, req Request) (*graph.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadDataset(f.Path)
}

// LoadDataset decodes a dataset file
func LoadDataset(path string) (*graph.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, grapherror.New(grapherror.CategoryFetch,
			errors.Wrapf(err, "read dataset %s", path), "").
			WithSubcategory(grapherror.SubcategoryFetchFile)
	}
	return DecodeDataset(data, filepath.Ext(path))
}

// DecodeDataset decodes data as YAML when ext is .yaml/.yml, JSON otherwise
func DecodeDataset(data []byte, ext string) (*graph.Dataset, error) {
	var ds graph.Dataset
	var err error
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &ds)
	default:
		err = json.Unmarshal(data, &ds)
	}
	if err != nil {
		return nil, grapherror.New(grapherror.CategoryFetch, errors.Wrap(err, "decode dataset"), "").
			WithSubcategory(grapherror.SubcategoryFetchDecode)
	}
	return &ds, nil
}
