package borrow

import (
	"fmt"
	"strconv"
	"strings"
)

const ticketNoPrefix = "BRW-"

// TicketNumber 生成借阅单号,如 BRW-000123
func TicketNumber(id uint) string {
	return fmt.Sprintf("%s%06d", ticketNoPrefix, id)
}

// ParseTicketNumber 解析借阅单号,也接受纯数字ID(馆员扫码枪输入)
func ParseTicketNumber(s string) (uint, error) {
	s = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), ticketNoPrefix)
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidTicketNumber
	}
	return uint(id), nil
}
