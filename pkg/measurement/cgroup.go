package measurement

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultCgroupRoot cgroup 文件系统挂载点
const DefaultCgroupRoot = "/sys/fs/cgroup"

// cgroupV1Unlimited hierarchical_memory_limit 不小于该值时视为未设置限制
const cgroupV1Unlimited uint64 = 0x7FFFFFFFFFFF0000

var errNoLimit = errors.New("cgroup memory limit not set")

// CgroupReader 读取容器 cgroup 内存计数，优先 v2，其次 v1
type CgroupReader struct {
	Root string
}

// Read 返回 nil 表示没有可用的 cgroup 内存限制（文件缺失、无限制或格式错误）
func (r CgroupReader) Read() *CgroupMemory {
	if cg, err := r.readV2(); err == nil {
		return cg
	}
	if cg, err := r.readV1(); err == nil {
		return cg
	}
	return nil
}

// readV2 memory.current / memory.max / memory.peak
func (r CgroupReader) readV2() (*CgroupMemory, error) {
	usage, err := readUint(filepath.Join(r.Root, "memory.current"))
	if err != nil {
		return nil, err
	}
	raw, err := readFirstLine(filepath.Join(r.Root, "memory.max"))
	if err != nil {
		return nil, err
	}
	if raw == "max" {
		return nil, errNoLimit
	}
	limit, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse memory.max: %w", err)
	}
	if limit == 0 {
		return nil, errNoLimit
	}
	// memory.peak 需要较新的内核，缺失时忽略
	peak, _ := readUint(filepath.Join(r.Root, "memory.peak"))
	return &CgroupMemory{UsageBytes: usage, LimitBytes: limit, PeakBytes: peak, Version: 2}, nil
}

// readV1 memory.usage_in_bytes / memory.max_usage_in_bytes / memory.stat
func (r CgroupReader) readV1() (*CgroupMemory, error) {
	dir := filepath.Join(r.Root, "memory")
	usage, err := readUint(filepath.Join(dir, "memory.usage_in_bytes"))
	if err != nil {
		return nil, err
	}
	limit, err := readHierarchicalLimit(filepath.Join(dir, "memory.stat"))
	if err != nil {
		return nil, err
	}
	peak, _ := readUint(filepath.Join(dir, "memory.max_usage_in_bytes"))
	return &CgroupMemory{UsageBytes: usage, LimitBytes: limit, PeakBytes: peak, Version: 1}, nil
}

// readHierarchicalLimit 行格式：hierarchical_memory_limit 12345
func readHierarchicalLimit(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 || fields[0] != "hierarchical_memory_limit" {
			continue
		}
		limit, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse hierarchical_memory_limit: %w", err)
		}
		if limit == 0 || limit >= cgroupV1Unlimited {
			return 0, errNoLimit
		}
		return limit, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, errNoLimit
}

func readUint(path string) (uint64, error) {
	line, err := readFirstLine(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(line, 10, 64)
}

func readFirstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%s: empty file", path)
	}
	return strings.TrimSpace(scanner.Text()), nil
}
