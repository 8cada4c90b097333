package utils

import "golang.org/x/crypto/bcrypt"

// 注册/登录的口令哈希。bcrypt 只看前 72 字节，长度上限在绑定层约束
func HashPassword(pw string) string {
	b, _ := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b)
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
