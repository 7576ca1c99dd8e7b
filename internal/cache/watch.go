package cache

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// startWatcher follows the cold store directory and drops hot entries whose
// file disappears, for example after `toevoice clear` ran in another
// process. Without it a hot entry could outlive its cold backing.
func (cm *CacheManager) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(cm.cold.Dir()); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", cm.cold.Dir(), err)
	}

	cm.watcher = watcher
	cm.watchStop = make(chan struct{})
	cm.watchWg.Add(1)
	go cm.watchLoop()

	cm.logger.Debug("Watching cold store", "dir", cm.cold.Dir())
	return nil
}

func (cm *CacheManager) watchLoop() {
	defer cm.watchWg.Done()

	for {
		select {
		case <-cm.watchStop:
			return

		case event, ok := <-cm.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			key, ok := keyFromFileName(filepath.Base(event.Name))
			if !ok {
				continue
			}
			if cm.hot.Delete(key) {
				cm.logger.Debug("Dropped hot entry after cold file removal", "key", key, "op", event.Op)
			}

		case err, ok := <-cm.watcher.Errors:
			if !ok {
				return
			}
			cm.logger.Warn("Cold store watcher error", "err", err)
		}
	}
}

func (cm *CacheManager) stopWatcher() error {
	if cm.watcher == nil {
		return nil
	}
	close(cm.watchStop)
	err := cm.watcher.Close()
	cm.watchWg.Wait()
	return err
}
