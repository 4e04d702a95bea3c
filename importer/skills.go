package importer

import "strings"

const maxSkillIDLen = 30

// DeriveSkillID 由技能缩写生成 skill_id：小写，空格和连字符换成下划线，按字符截断到 30 个
func DeriveSkillID(abr string) string {
	id := strings.ToLower(abr)
	id = strings.ReplaceAll(id, " ", "_")
	id = strings.ReplaceAll(id, "-", "_")
	r := []rune(id)
	if len(r) > maxSkillIDLen {
		r = r[:maxSkillIDLen]
	}
	return string(r)
}
