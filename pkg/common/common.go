package common

import (
	"strconv"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
	NA       = "N/A"
)

var (
	idNode     *snowflake.Node
	idNodeLock sync.Mutex
)

// SetNodeId configures the snowflake node used by UUIDint64. It must be
// called before the first id is generated to take effect.
func SetNodeId(id int64) error {
	idNodeLock.Lock()
	defer idNodeLock.Unlock()
	node, err := snowflake.NewNode(id)
	if err != nil {
		return err
	}
	idNode = node
	return nil
}

func node() *snowflake.Node {
	idNodeLock.Lock()
	defer idNodeLock.Unlock()
	if idNode == nil {
		idNode, _ = snowflake.NewNode(1)
	}
	return idNode
}

// UUIDint64 returns a time ordered unique id.
func UUIDint64() int64 {
	return node().Generate().Int64()
}

// UUID returns UUIDint64 as a decimal string.
func UUID() string {
	return strconv.FormatInt(UUIDint64(), 10)
}

func IsEmptyOrNA(val string) bool {
	val = strings.TrimSpace(val)
	return val == "" || val == NA
}

func IfEmptyStr(src string, defval string) string {
	if strings.TrimSpace(src) == "" {
		return defval
	}
	return src
}
