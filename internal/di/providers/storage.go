package providers

import (
	"github.com/samber/do/v2"

	"github.com/Amir-Wake/Ebookd/internal/config"
	"github.com/Amir-Wake/Ebookd/internal/logger"
	"github.com/Amir-Wake/Ebookd/internal/media/files"
)

// MediaStorages groups the on-disk stores for covers and book files.
type MediaStorages struct {
	Covers *files.Storage
	Epubs  *files.Storage
}

// ProvideMediaStorages provides the cover and epub file storages.
func ProvideMediaStorages(i do.Injector) (*MediaStorages, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	covers, err := files.NewCoverStorage(cfg.MediaPath())
	if err != nil {
		return nil, err
	}

	epubs, err := files.NewEpubStorage(cfg.MediaPath())
	if err != nil {
		return nil, err
	}

	log.Info("Media storage initialized", "path", cfg.MediaPath())

	return &MediaStorages{Covers: covers, Epubs: epubs}, nil
}
