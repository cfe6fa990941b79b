package pkg

import (
	"bytes"
	"fmt"
	"time"

	"github.com/beyondstorage/go-storage/v4/services"
	"github.com/beyondstorage/go-storage/v4/types"
	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"

	// Add fs support
	_ "github.com/beyondstorage/go-service-fs/v3"

	_ "github.com/beyondstorage/go-service-azblob/v2"
	_ "github.com/beyondstorage/go-service-cos/v2"
	_ "github.com/beyondstorage/go-service-dropbox/v2"
	_ "github.com/beyondstorage/go-service-gcs/v2"
	_ "github.com/beyondstorage/go-service-kodo/v2"
	_ "github.com/beyondstorage/go-service-oss/v2"
	_ "github.com/beyondstorage/go-service-qingstor/v3"
	_ "github.com/beyondstorage/go-service-s3/v2"

	"postforge/pkg/models"
)

type ArchiveConfig struct {
	// Storage connection string, e.g. `fs:///var/lib/postforge/archive`
	// or `s3://bucket/prefix`. Empty disables archival.
	ConnectionString string `mapstructure:"connectionString"`
}

// Archive writes published posts as Markdown documents with YAML front
// matter to an object storage target. Archival is best effort: the
// auto-publish flow logs failures but does not fail the run on them.
type Archive struct {
	store types.Storager
}

// NewArchive returns nil without error when archival is not configured.
func NewArchive(config *ArchiveConfig) (*Archive, error) {
	if config == nil || config.ConnectionString == "" {
		return nil, nil
	}

	store, err := services.NewStoragerFromString(config.ConnectionString)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to init archive storage")
	}

	return &Archive{store: store}, nil
}

type postFrontMatter struct {
	Title         string     `yaml:"title"`
	Slug          string     `yaml:"slug"`
	AgentName     string     `yaml:"agent"`
	TargetKeyword string     `yaml:"target_keyword,omitempty"`
	PublishedAt   *time.Time `yaml:"published_at,omitempty"`
}

func renderPostDocument(post *models.Post, agentName string) ([]byte, error) {
	frontMatter, err := yaml.Marshal(&postFrontMatter{
		Title:         post.Title,
		Slug:          post.Slug,
		AgentName:     agentName,
		TargetKeyword: post.TargetKeyword,
		PublishedAt:   post.PublishedAt,
	})
	if err != nil {
		return nil, errors.WithMessage(err, "failed to marshal post front matter")
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(frontMatter)
	buf.WriteString("---\n\n")
	buf.WriteString(post.Content)
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

func (a *Archive) ArchivePost(post *models.Post, agentName string) error {
	doc, err := renderPostDocument(post, agentName)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("posts/%s/%s.md", post.TenantId, post.Slug)
	if _, err := a.store.Write(path, bytes.NewReader(doc), int64(len(doc))); err != nil {
		return errors.WithMessagef(err, "failed to archive post %s", post.Id)
	}

	return nil
}
