package resources

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"sprintrace/pkg/layout"
	"sprintrace/pkg/track"
)

const (
	ResourcesDir = "./resources"
)

type builder func(filePath string, t *track.Track) error

// Resource is a generated file served under /resources/.
type Resource struct {
	id      string
	dir     string
	builder builder
	prefix  string
	suffix  string
	_type   string
}

// BuildTrackSvg renders the live map for a track once; an existing file is reused.
func BuildTrackSvg(dir, id string, t *track.Track) (Resource, error) {
	r := Resource{
		dir:     dir,
		builder: svgBuilderForTrack,
		prefix:  "track_",
		suffix:  ".svg",
		_type:   "svg-track",
	}

	return r.build(id, t)
}

// BuildTrackThumbnail renders the small PNG map sent by the bot.
func BuildTrackThumbnail(dir, id string, t *track.Track) (Resource, error) {
	r := Resource{
		dir:     dir,
		builder: layout.BuildTrackPNG,
		prefix:  "track_",
		suffix:  ".png",
		_type:   "track",
	}

	return r.build(id, t)
}

func (r Resource) buildFilePath(id string) string {
	return filepath.Join(r.dir, fmt.Sprintf("%s%s%s", r.prefix, id, r.suffix))
}

func (r Resource) IsZero() bool {
	return r.id == ""
}

func (r Resource) String() string {
	return fmt.Sprintf("ID: %s, Type: %s", r.id, r._type)
}

func (r Resource) FilePath() string {
	return r.buildFilePath(r.id)
}

func (r Resource) FileName() string {
	return fmt.Sprintf("%s%s%s", r.prefix, r.id, r.suffix)
}

func (r *Resource) build(id string, t *track.Track) (Resource, error) {
	if id == "" {
		return *r, errors.New("id cannot be empty")
	}
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return *r, errors.Wrapf(err, "creating %s", r.dir)
	}
	filePath := r.buildFilePath(id)
	if _, err := os.Stat(filePath); err == nil {
		log.Printf("resource for %q already exists\n", id)
	} else if os.IsNotExist(err) {
		err := r.builder(filePath, t)
		if err != nil {
			log.Printf("Error building resource: %s\n", err)
			return *r, err
		}
	} else {
		return *r, err
	}

	r.id = id
	return *r, nil
}

func svgBuilderForTrack(filePath string, t *track.Track) error {
	_, err := layout.BuildTrackSVG(filePath, t)
	return err
}
