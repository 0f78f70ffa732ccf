// Package storage 负责运行状态的持久化
//
// 所有文件只追加不改写: 每个站点爬取完成后依次追加结果行(或候选URL)、已爬取URL、失败URL。
// 进程在第N个站点后崩溃时,前N个站点的记录都已落盘,重新运行不会重复请求或重复写入。
//
// 托管商扫描模式的文件:
//
//	products_mentioned_by_hosters.csv  结果表,首次创建时写入表头
//	urls_crawled.txt                   已爬取URL,每行一个
//	urls_with_errors.txt               下载失败URL,每行一个
//	crawling_errors.log                人类可读的错误日志
//	products.txt / keywords.txt        每次运行重新生成
//
// 列表站点模式的文件:
//
//	listing_site_urls_crawled.txt
//	listing_site_urls_with_errors.txt
//	possible_hoster_urls_found.txt     外部候选BaseURL
//	crawling_errors.log
package storage
