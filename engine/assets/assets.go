package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/anima-g3d/engine/assets/loaders"
	"github.com/spaghettifunk/anima-g3d/engine/core"
	"github.com/spaghettifunk/anima-g3d/engine/renderer/metadata"
)

// AssetInfo describes an indexed file.
type AssetInfo struct {
	// Name is the slash separated path relative to the asset root.
	Name string
	// Path is the path on disk.
	Path string
	Type metadata.ResourceType
	// Generation starts at 0 and grows every time the file changes on disk.
	Generation uint32
	ModTime    time.Time
	// Removed is set on change notifications for deleted files.
	Removed bool
}

// AssetManager indexes the files under a root directory and, when watching,
// keeps the index current as files come and go.
type AssetManager struct {
	root    string
	assets  map[string]*AssetInfo
	byBase  map[string]string
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	wg       sync.WaitGroup
	fsnotify *fsnotify.Watcher
	isClosed bool
	changes  chan AssetInfo
}

func NewAssetManager(root string, watch bool) (*AssetManager, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("asset root %s: %w", root, core.ErrAssetNotFound)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("asset root %s is not a directory: %w", root, core.ErrAssetNotFound)
	}

	am := &AssetManager{
		root:    filepath.Clean(root),
		assets:  make(map[string]*AssetInfo),
		byBase:  make(map[string]string),
		loaders: make(map[metadata.ResourceType]Loader),
		done:    make(chan struct{}),
		changes: make(chan AssetInfo, 64),
	}
	am.registerLoader(metadata.ResourceTypeImage, &loaders.TextureLoader{})

	if watch {
		am.fsnotify, err = fsnotify.NewWatcher()
		if err != nil {
			return nil, err
		}
	}
	if err := am.watchRecursive(am.root); err != nil {
		am.Close()
		return nil, err
	}
	if watch {
		am.wg.Add(1)
		go am.start()
	}

	core.LogDebug("asset manager indexed %d files under %s (watch=%t)", am.Count(), am.root, watch)
	return am, nil
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

func (am *AssetManager) Root() string {
	return am.root
}

func (am *AssetManager) Count() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// Changes delivers one notification per indexed file created, modified or
// removed while watching. Notifications are dropped when nobody reads.
func (am *AssetManager) Changes() <-chan AssetInfo {
	return am.changes
}

// Resolve finds an asset by its path relative to the root or, failing
// that, by its base name. A file created under the root after the last
// scan is indexed on first use.
func (am *AssetManager) Resolve(name string) (AssetInfo, error) {
	key := path.Clean(filepath.ToSlash(name))
	if info, ok := am.lookup(key); ok {
		return info, nil
	}

	if !path.IsAbs(key) && !strings.HasPrefix(key, "../") {
		p := filepath.Join(am.root, filepath.FromSlash(key))
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			if info, ok := am.indexFile(p, fi); ok {
				return info, nil
			}
		}
	}
	return AssetInfo{}, fmt.Errorf("%s: %w", name, core.ErrAssetNotFound)
}

func (am *AssetManager) lookup(key string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	if info, ok := am.assets[key]; ok {
		return *info, true
	}
	if rel, ok := am.byBase[path.Base(key)]; ok {
		if info, ok := am.assets[rel]; ok {
			return *info, true
		}
	}
	return AssetInfo{}, false
}

// LoadAsset resolves name and loads it with the loader of its type.
func (am *AssetManager) LoadAsset(name string, params interface{}) (*metadata.Resource, AssetInfo, error) {
	info, err := am.Resolve(name)
	if err != nil {
		return nil, AssetInfo{}, err
	}

	loader, loaderExists := am.loaders[info.Type]
	if !loaderExists {
		return nil, info, fmt.Errorf("no loader registered for asset type %s: %w", info.Type, core.ErrUnsupportedFormat)
	}

	res, err := loader.Load(info.Path, info.Type, params)
	if err != nil {
		return nil, info, err
	}
	res.Name = info.Name
	return res, info, nil
}

func (am *AssetManager) UnloadAsset(res *metadata.Resource) error {
	if res == nil {
		return nil
	}
	loader, ok := am.loaders[res.Type]
	if !ok {
		return fmt.Errorf("no loader registered for asset type %s: %w", res.Type, core.ErrUnsupportedFormat)
	}
	return loader.Unload(res)
}

// Close stops watching. The index stays readable.
func (am *AssetManager) Close() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	am.wg.Wait()
	if am.fsnotify != nil {
		return am.fsnotify.Close()
	}
	return nil
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		s, err := os.Stat(e.Name)
		if err != nil {
			return
		}
		if s.IsDir() {
			if e.Op&fsnotify.Create != 0 {
				if err := am.watchRecursive(e.Name); err != nil {
					core.LogWarn("asset watcher: %s", err)
				}
			}
			return
		}
		if info, ok := am.indexFile(e.Name, s); ok {
			am.notify(info)
		}
		return
	}
	// A removed directory cannot be told apart from a file anymore.
	if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		if info, ok := am.removeAsset(e.Name); ok {
			am.notify(info)
		}
	}
}

func (am *AssetManager) notify(info AssetInfo) {
	select {
	case am.changes <- info:
	default:
	}
}

// watchRecursive indexes every file under dir and, when watching, adds
// every directory to the watch list.
func (am *AssetManager) watchRecursive(dir string) error {
	return filepath.WalkDir(dir, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if am.fsnotify != nil {
				return am.fsnotify.Add(walkPath)
			}
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		am.indexFile(walkPath, fi)
		return nil
	})
}

func (am *AssetManager) relName(p string) (string, bool) {
	rel, err := filepath.Rel(am.root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// indexFile adds or refreshes the entry of the file at p. A file already
// indexed gets a new generation.
func (am *AssetManager) indexFile(p string, fi fs.FileInfo) (AssetInfo, bool) {
	assetType, ok := determineAssetType(p)
	if !ok {
		return AssetInfo{}, false
	}
	rel, ok := am.relName(p)
	if !ok {
		return AssetInfo{}, false
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()

	info, exists := am.assets[rel]
	if exists {
		info.Generation++
		info.ModTime = fi.ModTime()
	} else {
		info = &AssetInfo{
			Name:    rel,
			Path:    p,
			Type:    assetType,
			ModTime: fi.ModTime(),
		}
		am.assets[rel] = info
		if _, taken := am.byBase[path.Base(rel)]; !taken {
			am.byBase[path.Base(rel)] = rel
		}
	}
	return *info, true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(p string) (AssetInfo, bool) {
	rel, ok := am.relName(p)
	if !ok {
		return AssetInfo{}, false
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()

	info, exists := am.assets[rel]
	if !exists {
		return AssetInfo{}, false
	}
	delete(am.assets, rel)
	base := path.Base(rel)
	if am.byBase[base] == rel {
		delete(am.byBase, base)
		for other := range am.assets {
			if path.Base(other) == base {
				am.byBase[base] = other
				break
			}
		}
	}
	removed := *info
	removed.Removed = true
	return removed, true
}

func determineAssetType(p string) (metadata.ResourceType, bool) {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp", ".tga":
		return metadata.ResourceTypeImage, true
	default:
		return 0, false
	}
}
