package conf

// Bootstrap 展示服务的全部配置
type Bootstrap struct {
	Server *Server `json:"server"`
	Data   *Data   `json:"data"`
}

type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}

// Data 报告读取来源，与 market_brief 的 publish 配置一一对应
type Data struct {
	// Target gist, file, redis or postgres
	Target   string    `json:"target"`
	Gist     *Gist     `json:"gist"`
	File     *File     `json:"file"`
	Redis    *Redis    `json:"redis"`
	Postgres *Postgres `json:"postgres"`
	// CacheTTL 报告缓存时长，例如 60s，避免每个请求都访问远端
	CacheTTL string `json:"cache_ttl"`
}

type Gist struct {
	Token    string `json:"token"`
	Id       string `json:"id"`
	Filename string `json:"filename"`
	BaseUrl  string `json:"base_url"`
}

type File struct {
	Path string `json:"path"`
}

type Redis struct {
	Url string `json:"url"`
	Key string `json:"key"`
}

type Postgres struct {
	Dsn  string `json:"dsn"`
	Name string `json:"name"`
}
