package service

import (
	"strings"

	"github.com/Dixeliare/hochiminh-chatbot/internal/model"
)

const chunkMaxLength = 500

// builtinCorpus returns the bundled Ho Chi Minh thought passages with their
// citation metadata. Long passages are chunked so every stored document stays
// prompt-sized; metadata is repeated per chunk.
func builtinCorpus() ([]string, []model.DocumentMetadata) {
	passages := []string{
		"Tất cả mọi người đều sinh ra có quyền bình đẳng. Tạo hóa cho họ những quyền không ai có thể xâm phạm được, trong những quyền ấy có quyền được sống, quyền tự do và quyền mưu cầu hạnh phúc. Độc lập là quyền thiêng liêng bất khả xâm phạm của mọi dân tộc trên thế giới.",

		"Đạo đức cách mạng không phải là từ trời rơi xuống. Nó do đấu tranh và giáo dục hằng ngày mà có. Như cây lúa, muốn tốt thì phải cần mẫn bón phân, tưới nước. Cán bộ cách mạng muốn có đạo đức tốt, thì phải luôn luôn học tập, rèn luyện.",

		"Đảng ta là đội tiên phong của giai cấp công nhân, đồng thời cũng là đội tiên phong của dân tộc Việt Nam và của nhân dân lao động. Đảng phải luôn luôn gần gũi với dân, phải hiểu dân, học dân, yêu dân. Dân là gốc, có gốc vững thì nước mới êm.",

		"Học để làm người trước, học để làm việc sau. Đức mà không có tài thì khó mà làm được việc lớn. Tài mà không có đức thì càng tài thì càng làm hại. Vậy đức và tài phải đi đôi với nhau.",

		"Tự lực cánh sinh không có nghĩa là cô lập mình, không có nghĩa là chúng ta không cần bạn bè. Ngược lại, chúng ta muốn đoàn kết với tất cả những người yêu hòa bình, yêu tiến bộ trên thế giới. Nhưng chủ yếu vẫn phải dựa vào sức mình.",

		"Ta phải học cái hay của người ta, nhưng phải giữ cái hay của ta. Cái hay của dân tộc ta là truyền thống yêu nước, truyền thống đoàn kết, truyền thống cần cù, sáng tạo. Những cái đó phải kết hợp với khoa học cách mạng.",

		"Chúng ta vừa là những người yêu nước chân chính, vừa là những quốc tế chủ nghĩa chân chính. Yêu nước và quốc tế chủ nghĩa không mâu thuẫn mà bổ sung cho nhau.",

		"Dân chủ tập trung có nghĩa là tập trung trên cơ sở dân chủ, dân chủ dưới sự lãnh đạo tập trung. Không có dân chủ thì không thể có tập trung đúng đắn, không có tập trung thì dân chủ sẽ thành tự do phóng túng.",
	}
	metadatas := []model.DocumentMetadata{
		{Source: "Tuyên ngôn độc lập CHXHCN Việt Nam, 2/9/1945", DocumentTitle: "Tuyên ngôn độc lập", Topic: "độc lập", Page: "toàn văn", CredibilityScore: 100, SourceType: model.SourceTypePrimary},
		{Source: "Toàn tập Hồ Chí Minh, tập 5, tr.234-236", DocumentTitle: "Sửa đổi lối làm việc (1947)", Topic: "đạo đức", Page: "tr.234-236", CredibilityScore: 100, SourceType: model.SourceTypeOfficial},
		{Source: "Toàn tập Hồ Chí Minh, tập 12, tr.45-48", DocumentTitle: "Về vai trò của Đảng (1969)", Topic: "đảng-dân", Page: "tr.45-48", CredibilityScore: 100, SourceType: model.SourceTypeOfficial},
		{Source: "Toàn tập Hồ Chí Minh, tập 4, tr.89-92", DocumentTitle: "Về giáo dục (1946)", Topic: "giáo dục", Page: "tr.89-92", CredibilityScore: 100, SourceType: model.SourceTypeOfficial},
		{Source: "Toàn tập Hồ Chí Minh, tập 6, tr.167-170", DocumentTitle: "Về tự lực cánh sinh (1955)", Topic: "kinh tế", Page: "tr.167-170", CredibilityScore: 100, SourceType: model.SourceTypeOfficial},
		{Source: "Toàn tập Hồ Chí Minh, tập 8, tr.123-126", DocumentTitle: "Về truyền thống dân tộc (1958)", Topic: "văn hóa", Page: "tr.123-126", CredibilityScore: 100, SourceType: model.SourceTypeOfficial},
		{Source: "Toàn tập Hồ Chí Minh, tập 7, tr.89-91", DocumentTitle: "Về quốc tế chủ nghĩa (1957)", Topic: "quốc tế", Page: "tr.89-91", CredibilityScore: 100, SourceType: model.SourceTypeOfficial},
		{Source: "Toàn tập Hồ Chí Minh, tập 15, tr.234-237", DocumentTitle: "Về dân chủ tập trung (1965)", Topic: "dân chủ", Page: "tr.234-237", CredibilityScore: 100, SourceType: model.SourceTypeOfficial},
	}

	texts := make([]string, 0, len(passages))
	metas := make([]model.DocumentMetadata, 0, len(passages))
	for i, passage := range passages {
		if len(passage) <= chunkMaxLength {
			texts = append(texts, passage)
			metas = append(metas, metadatas[i])
			continue
		}
		for _, chunk := range splitText(passage, chunkMaxLength) {
			texts = append(texts, chunk)
			metas = append(metas, metadatas[i])
		}
	}
	return texts, metas
}

// splitText breaks text into sentence-aligned chunks no longer than maxLength.
func splitText(text string, maxLength int) []string {
	sentences := strings.Split(text, ". ")
	var chunks []string
	var current strings.Builder
	for _, sentence := range sentences {
		if current.Len()+len(sentence) >= maxLength && current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(sentence)
		current.WriteString(". ")
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	return chunks
}
