package utils

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
)

// MemorySample 一次内存采样
type MemorySample struct {
	TotalMB     uint64 // 系统总内存
	AvailableMB uint64 // 系统可用内存
	HeapMB      uint64 // 本进程堆内存
}

// MemorySampler 内存采样函数
type MemorySampler func() (MemorySample, error)

// SystemMemory 使用gopsutil读取系统内存
func SystemMemory() (MemorySample, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return MemorySample{}, fmt.Errorf("获取系统内存失败: %w", err)
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return MemorySample{
		TotalMB:     vm.Total / (1024 * 1024),
		AvailableMB: vm.Available / (1024 * 1024),
		HeapMB:      ms.HeapAlloc / (1024 * 1024),
	}, nil
}

// ResourceMonitor 站点之间检查可用内存
// 状态集合随运行增长,内存不足时提醒用户分批运行(--start-at/--stop-at)
type ResourceMonitor struct {
	minFreeMB uint64
	sample    MemorySampler
	warned    bool
}

// NewResourceMonitor 创建监控器,minFreeMB为0时禁用检查
func NewResourceMonitor(minFreeMB uint64, sampler MemorySampler) *ResourceMonitor {
	if sampler == nil {
		sampler = SystemMemory
	}
	return &ResourceMonitor{minFreeMB: minFreeMB, sample: sampler}
}

// Check 采样一次,内存低于阈值时返回 false 与原因
// 每次运行只记录一次警告
func (rm *ResourceMonitor) Check() (ok bool, reason string) {
	if rm == nil || rm.minFreeMB == 0 {
		return true, ""
	}
	s, err := rm.sample()
	if err != nil {
		Debugf("内存采样失败: %v", err)
		return true, ""
	}
	if s.AvailableMB >= rm.minFreeMB {
		return true, ""
	}

	reason = fmt.Sprintf("可用内存不足(当前%dMB,阈值%dMB,进程堆%dMB)", s.AvailableMB, rm.minFreeMB, s.HeapMB)
	if !rm.warned {
		rm.warned = true
		Warnf("%s,建议使用 --start-at/--stop-at 分批运行", reason)
	}
	return false, reason
}
