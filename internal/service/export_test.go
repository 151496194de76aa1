package service

// pendingKeys 当前等待或执行中的 key 数量
func pendingKeys(d *Debouncer) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
