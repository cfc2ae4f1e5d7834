package orchestrator

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-stereo/engine/pass"
)

// DebugView selects the intermediate texture drawn into the debug target.
type DebugView int32

const (
	DebugViewNone DebugView = iota
	DebugViewScene
	DebugViewDepth
	DebugViewBright
	DebugViewBloom
	DebugViewVolumeLight
	DebugViewComposite
)

// DebugViewCount is the number of debug views, DebugViewNone included.
const DebugViewCount = 7

var debugViewNames = [DebugViewCount]string{"none", "scene", "depth", "bright", "bloom", "volume", "composite"}

func (v DebugView) String() string {
	if v < 0 || v >= DebugViewCount {
		return fmt.Sprintf("DebugView(%d)", int32(v))
	}
	return debugViewNames[v]
}

// source maps the view to the debug pass input.
func (v DebugView) source() pass.DebugSource {
	switch v {
	case DebugViewScene:
		return pass.DebugSourceScene
	case DebugViewDepth:
		return pass.DebugSourceDepth
	case DebugViewBright:
		return pass.DebugSourceBright
	case DebugViewBloom:
		return pass.DebugSourceBloom
	case DebugViewVolumeLight:
		return pass.DebugSourceLight
	case DebugViewComposite:
		return pass.DebugSourceComposite
	default:
		return pass.DebugSourceNone
	}
}

// ParseDebugView returns the view with the given name, as printed by String.
//
// Parameters:
//   - name: the view name, case-insensitive
//
// Returns:
//   - DebugView: the view
//   - error: an error if no view has that name
func ParseDebugView(name string) (DebugView, error) {
	for i, n := range debugViewNames {
		if strings.EqualFold(n, name) {
			return DebugView(i), nil
		}
	}
	return DebugViewNone, fmt.Errorf("unknown debug view %q", name)
}
