package game

import "fmt"

// InvariantError 世界状态与收到的包不一致：包指向不存在的区域或实体。
// 这类错误说明协议本身出了问题，以 panic 抛出。
type InvariantError struct {
	Msg string
}

func (e InvariantError) Error() string { return "game: invariant violated: " + e.Msg }

func invariantf(format string, args ...any) {
	panic(InvariantError{Msg: fmt.Sprintf(format, args...)})
}
