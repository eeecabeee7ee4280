package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// paramKeyMap translates the legacy flat parameter-file keys (spec §6
// "All inputs are declared in a text parameter file") to the viper keys
// used by Config's mapstructure tags. Anything not listed here is passed
// through as-is under its own top-level key (for forward compatibility
// with new keys added directly under a section).
var paramKeyMap = map[string]string{
	"program_mode":            "segmentation.program_mode",
	"dissim_crit":             "segmentation.dissim_crit",
	"conn_type":               "segmentation.conn_type",
	"spclust_wght":            "segmentation.spclust_wght",
	"spclust_min":             "segmentation.spclust_min",
	"spclust_max":             "segmentation.spclust_max",
	"init_threshold":          "segmentation.init_threshold",
	"edge_threshold":          "segmentation.edge_threshold",
	"edge_wght":               "segmentation.edge_wght",
	"edge_power":              "segmentation.edge_power",
	"edge_dissim_option":      "segmentation.edge_dissim_option",
	"seam_edge_threshold":     "segmentation.seam_edge_threshold",
	"min_nregions":            "segmentation.min_nregions",
	"conv_nregions":           "segmentation.conv_nregions",
	"gdissim_flag":            "segmentation.gdissim_flag",
	"merge_accel_flag":        "segmentation.merge_accel_flag",
	"sort_flag":               "segmentation.sort_flag",
	"random_init_seed_flag":   "segmentation.random_init_seed_flag",
	"complete_labeling_flag":  "segmentation.complete_labeling_flag",
	"sar_speckle_noise":       "segmentation.sar_speckle_noise",

	"chk_nregions_flag":         "checkpoint.chk_nregions_flag",
	"chk_nregions":              "checkpoint.chk_nregions",
	"hseg_out_nregions_flag":    "checkpoint.hseg_out_nregions_flag",
	"hseg_out_nregions":         "checkpoint.hseg_out_nregions",
	"hseg_out_thresholds_flag":  "checkpoint.hseg_out_thresholds_flag",
	"hseg_out_thresholds":       "checkpoint.hseg_out_thresholds",

	"rnb_levels":  "recursion.rnb_levels",
	"ionb_levels": "recursion.ionb_levels",

	"region_nb_objects_flag":     "output.region_nb_objects_flag",
	"object_conn_type1":          "output.object_conn_type1",
	"region_sum_flag":            "output.region_sum_flag",
	"region_std_dev_flag":        "output.region_std_dev_flag",
	"region_boundary_npix_flag":  "output.region_boundary_npix_flag",
	"region_threshold_flag":      "output.region_threshold_flag",
	"region_objects_list_flag":   "output.region_objects_list_flag",
	"boundary_map_flag":          "output.boundary_map_flag",
	"oparam_path":                "output.sidecar_path",

	"input_image":         "raster.primary_path",
	"mask":                "raster.mask_path",
	"mask_value":          "raster.mask_value",
	"std_dev_image":       "raster.std_dev_path",
	"edge_image":          "raster.edge_path",
	"input_region_label":  "raster.input_label_path",
	"class_labels_map":    "raster.class_labels_out",
	"object_labels_map":   "raster.object_labels_out",
	"boundary_map":        "raster.boundary_map_out",
}

// ParseParamFile reads the legacy line-oriented `key = value` parameter
// file format (spec §6) and returns a flat map of viper keys to scalar
// values, ready for Loader.Load to layer over defaults. Grounded in the
// original `params.cc` parsing style: blank lines and lines starting
// with `#` or `;` are comments, list-valued keys repeat the key once per
// value or use a single comma-separated value, and boolean values accept
// "true"/"false"/"1"/"0".
func ParseParamFile(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("paramfile: open %s: %w", path, err)
	}
	defer f.Close()

	fields := make(map[string]any)
	lists := make(map[string][]string)

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		key, rawValue, ok := splitParamLine(line)
		if !ok {
			return nil, fmt.Errorf("paramfile: %s:%d: malformed line %q", path, lineNo, line)
		}

		viperKey, listValued := resolveParamKey(key)
		if listValued {
			lists[viperKey] = append(lists[viperKey], splitListValues(rawValue)...)
			continue
		}

		fields[viperKey] = coerceScalar(rawValue)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("paramfile: scan %s: %w", path, err)
	}

	for k, values := range lists {
		if k == "checkpoint.hseg_out_nregions" {
			fields[k] = coerceIntList(values)
		} else {
			fields[k] = coerceFloatList(values)
		}
	}

	return fields, nil
}

func splitParamLine(line string) (key, value string, ok bool) {
	idx := strings.Index(line, "=")
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	return key, value, key != ""
}

func resolveParamKey(key string) (viperKey string, listValued bool) {
	switch key {
	case "hseg_out_nregions", "hseg_out_thresholds":
		return paramKeyMap[key], true
	}
	if mapped, ok := paramKeyMap[key]; ok {
		return mapped, false
	}
	return key, false
}

func splitListValues(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func coerceScalar(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func coerceFloatList(values []string) []float64 {
	floats := make([]float64, 0, len(values))
	for _, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		floats = append(floats, f)
	}
	return floats
}

func coerceIntList(values []string) []int {
	ints := make([]int, 0, len(values))
	for _, v := range values {
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		ints = append(ints, int(i))
	}
	return ints
}
