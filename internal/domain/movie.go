package domain

// MovieRecord 是从列表页单个 item 解析得到的结构化记录。
//
// 约束：
// - 每个字段独立可选：缺失即 nil（JSON 输出 null），一个字段失败不影响其他字段
// - Genres 与 Links.Genres 必须等长且按下标一一对应
// - 记录在一次解析中构造一次，之后不再修改
type MovieRecord struct {
	ID          *int     `json:"id"`
	Title       *string  `json:"title"`
	Year        *int     `json:"year"`
	Language    *string  `json:"language"`
	IMDbRating  *float64 `json:"imdb_rating"`
	Duration    *string  `json:"duration"`
	Thumbnail   *string  `json:"thumbnail"`
	Description *string  `json:"description"`
	Country     *string  `json:"country"`
	Genres      []string `json:"genres"`
	Links       Links    `json:"links"`
}

// Links 保存与字段对应的目标地址（href）。
type Links struct {
	Watch   *string   `json:"watch"`
	Year    *string   `json:"year"`
	Country *string   `json:"country"`
	Genres  []*string `json:"genres"` // 与 MovieRecord.Genres 平行；无 href 的条目为 nil
}

// NewMovieRecord 返回一个空记录（切片字段已初始化，保证 JSON 输出为 [] 而不是 null）。
func NewMovieRecord() MovieRecord {
	return MovieRecord{
		Genres: []string{},
		Links:  Links{Genres: []*string{}},
	}
}

// AddGenre 同时追加 genre 名称与对应链接，维持两个切片的平行关系。
func (m *MovieRecord) AddGenre(name string, href *string) {
	m.Genres = append(m.Genres, name)
	m.Links.Genres = append(m.Links.Genres, href)
}

// Catalog 是最终输出文件的顶层结构：{ "movies": [...] }。
type Catalog struct {
	Movies []MovieRecord `json:"movies"`
}

func NewCatalog(movies []MovieRecord) Catalog {
	if movies == nil {
		movies = []MovieRecord{}
	}
	return Catalog{Movies: movies}
}
