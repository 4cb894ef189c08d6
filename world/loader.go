package world

import (
	"fmt"
	"io/fs"

	"github.com/lafriks/go-tiled"
)

// LoadTMX parses a Tiled map and builds a collision world from its
// "collision" tile layer. Non-nil tiles on that layer are solid. It takes
// an fs.FS so callers can pass embed.FS or os.DirFS.
func LoadTMX(fsys fs.FS, tmxPath string) (*CollisionWorld, error) {
	levelMap, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	w := New(levelMap.Width*levelMap.TileWidth, levelMap.Height*levelMap.TileHeight)

	tileW := float64(levelMap.TileWidth)
	tileH := float64(levelMap.TileHeight)
	for _, layer := range levelMap.Layers {
		if layer.Name != "collision" {
			continue
		}
		for y := 0; y < levelMap.Height; y++ {
			for x := 0; x < levelMap.Width; x++ {
				tile := layer.Tiles[y*levelMap.Width+x]
				if tile.IsNil() {
					continue
				}
				w.AddSolid(float64(x)*tileW, float64(y)*tileH, tileW, tileH)
			}
		}
		break
	}

	return w, nil
}
