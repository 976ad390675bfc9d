package inspect

import (
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strings"
)

// nodeTypeRe splits node names like "gpu-a100-03" into the letter prefix
// used as the node type.
var nodeTypeRe = regexp.MustCompile(`^([a-zA-Z-]+?)-?\d`)

// NodeTypeSummary groups idle GPU nodes sharing a name prefix.
type NodeTypeSummary struct {
	NodeType   string   `json:"node_type"`
	Count      int      `json:"count"`
	Partitions []string `json:"partitions"`
}

// PartitionSummary groups idle GPU nodes by Slurm partition.
type PartitionSummary struct {
	Partition string   `json:"partition"`
	Count     int      `json:"count"`
	NodeTypes []string `json:"node_types"`
}

type SlurmIdleGPUs struct {
	ByNodeType  []NodeTypeSummary  `json:"by_node_type"`
	ByPartition []PartitionSummary `json:"by_partition"`
}

// CollectSlurmIdleGPUs runs sinfo and summarizes idle GPU nodes. Only
// works on hosts with Slurm client tools installed.
func CollectSlurmIdleGPUs() (*SlurmIdleGPUs, error) {
	out, err := exec.Command("sinfo", "-lNe").Output()
	if err != nil {
		return nil, fmt.Errorf("sinfo failed: %w", err)
	}
	return ParseSinfo(string(out)), nil
}

// ParseSinfo reads `sinfo -lNe` output: two header lines, then one line
// per node with NODELIST, NODES, PARTITION, STATE, ... GRES near the end.
// Nodes are counted when their GRES column mentions an NVIDIA GPU.
func ParseSinfo(out string) *SlurmIdleGPUs {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) <= 2 {
		return &SlurmIdleGPUs{ByNodeType: []NodeTypeSummary{}, ByPartition: []PartitionSummary{}}
	}

	type nodeGroup struct {
		nodes      map[string]bool
		partitions map[string]bool
	}
	nodeInfo := make(map[string]*nodeGroup)
	partitionInfo := make(map[string]map[string]bool)

	for _, line := range lines[2:] {
		parts := strings.Fields(line)
		if len(parts) < 3 || !strings.Contains(parts[len(parts)-2], "nvidia") {
			continue
		}
		node := parts[0]
		partition := parts[2]

		if m := nodeTypeRe.FindStringSubmatch(node); m != nil {
			nodeType := m[1]
			group, ok := nodeInfo[nodeType]
			if !ok {
				group = &nodeGroup{nodes: map[string]bool{}, partitions: map[string]bool{}}
				nodeInfo[nodeType] = group
			}
			group.nodes[node] = true
			group.partitions[partition] = true
		}

		if partitionInfo[partition] == nil {
			partitionInfo[partition] = map[string]bool{}
		}
		partitionInfo[partition][node] = true
	}

	result := &SlurmIdleGPUs{
		ByNodeType:  []NodeTypeSummary{},
		ByPartition: []PartitionSummary{},
	}

	for nodeType, group := range nodeInfo {
		result.ByNodeType = append(result.ByNodeType, NodeTypeSummary{
			NodeType:   nodeType,
			Count:      len(group.nodes),
			Partitions: sortedKeys(group.partitions),
		})
	}
	sort.Slice(result.ByNodeType, func(i, j int) bool {
		return result.ByNodeType[i].NodeType < result.ByNodeType[j].NodeType
	})

	for partition, nodes := range partitionInfo {
		types := map[string]bool{}
		for node := range nodes {
			if m := nodeTypeRe.FindStringSubmatch(node); m != nil {
				types[m[1]] = true
			}
		}
		result.ByPartition = append(result.ByPartition, PartitionSummary{
			Partition: partition,
			Count:     len(nodes),
			NodeTypes: sortedKeys(types),
		})
	}
	sort.Slice(result.ByPartition, func(i, j int) bool {
		return result.ByPartition[i].Partition < result.ByPartition[j].Partition
	})

	return result
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
