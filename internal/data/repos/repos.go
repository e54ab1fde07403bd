package repos

import (
	"github.com/dlopezkluever/wizardirector/internal/data/repos/assets"
)

type LibraryAssetRepo = assets.LibraryAssetRepo
type LocalAssetRepo = assets.LocalAssetRepo

type LinkFilter = assets.LinkFilter

const (
	LinkAny      = assets.LinkAny
	LinkLinked   = assets.LinkLinked
	LinkUnlinked = assets.LinkUnlinked
)

var (
	NewLibraryAssetRepo = assets.NewLibraryAssetRepo
	NewLocalAssetRepo   = assets.NewLocalAssetRepo
)
